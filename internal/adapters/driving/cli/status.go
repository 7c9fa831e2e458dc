package cli

import (
	"github.com/spf13/cobra"

	"github.com/forgemine/forgemine/internal/adapters/driven/config/file"
	"github.com/forgemine/forgemine/internal/adapters/driven/storage/flatfile"
	"github.com/forgemine/forgemine/internal/core/domain"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show harvest progress per collection",
	Long: `Reads the checkpoints and record files in the output directory and
prints where each collection stands: rows on disk, pages fetched, and
whether the collection has been fully harvested.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "",
		"output directory (overrides the config file)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := file.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if statusOutput != "" {
		cfg.Output.Dir = statusOutput
	}

	checkpoints, err := flatfile.NewCheckpointStore(cfg.Output.Dir)
	if err != nil {
		return err
	}

	cmd.Printf("Output directory: %s\n", cfg.Output.Dir)
	for _, collection := range domain.AllCollections() {
		rows, err := flatfile.CountRecords(cfg.Output.Dir, collection)
		if err != nil {
			return err
		}
		state, err := checkpoints.Load(ctx, collection)
		if err != nil {
			return err
		}

		switch {
		case state == nil && rows == 0:
			cmd.Printf("  %-14s not started\n", collection)
		case state == nil:
			cmd.Printf("  %-14s %6d rows, no checkpoint\n", collection, rows)
		case state.Cursor.Exhausted:
			cmd.Printf("  %-14s %6d rows, complete (%d pages, saved %s)\n",
				collection, rows, state.Cursor.Seq, state.SavedAt.Format("2006-01-02 15:04"))
		default:
			cmd.Printf("  %-14s %6d rows, in progress at page %d (saved %s)\n",
				collection, rows, state.Cursor.Seq, state.SavedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
