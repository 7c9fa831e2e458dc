package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgemine/forgemine/internal/adapters/driven/config/file"
	"github.com/forgemine/forgemine/internal/adapters/driven/storage/flatfile"
	"github.com/forgemine/forgemine/internal/connectors/github"
	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/services"
	"github.com/forgemine/forgemine/internal/logger"
)

var (
	harvestRepo        string
	harvestOutput      string
	harvestCollections []string
	harvestConcurrency int
	harvestMaxPages    int
	harvestFresh       bool
	harvestWait        bool
	harvestProbeQuota  bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest the configured repository's collections",
	Long: `Harvests issues, pull requests, comments and reviews into CSV files in
the output directory. Each collection resumes from its checkpoint, so
re-running after an interruption continues rather than starting over.
Use --fresh to discard checkpoints and start a collection from the top.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringVarP(&harvestRepo, "repo", "r", "",
		"repository to harvest as owner/name (overrides the config file)")
	harvestCmd.Flags().StringVarP(&harvestOutput, "output", "o", "",
		"output directory (overrides the config file)")
	harvestCmd.Flags().StringSliceVar(&harvestCollections, "collections", nil,
		"collections to harvest (default all: issues,pull_requests,comments,reviews)")
	harvestCmd.Flags().IntVar(&harvestConcurrency, "concurrency", 0,
		"collections to harvest at once (0 or 1 runs them sequentially)")
	harvestCmd.Flags().IntVar(&harvestMaxPages, "max-pages", 0,
		"stop each collection after this many pages (0 means no cap)")
	harvestCmd.Flags().BoolVar(&harvestFresh, "fresh", false,
		"discard checkpoints and start the selected collections from the top")
	harvestCmd.Flags().BoolVar(&harvestWait, "wait", false,
		"wait for quota to reset instead of failing when every token is exhausted")
	harvestCmd.Flags().BoolVar(&harvestProbeQuota, "probe-quota", false,
		"seed each token's budget from its live remaining quota")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// 1. Resolve configuration, flags winning over the file.
	cfg, err := file.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if harvestRepo != "" {
		owner, name, err := splitRepo(harvestRepo)
		if err != nil {
			return err
		}
		cfg.Repository.Owner, cfg.Repository.Name = owner, name
	}
	if cfg.Repository.Owner == "" || cfg.Repository.Name == "" {
		return errors.New("no repository configured: set repository.owner and repository.name or pass --repo")
	}
	if harvestOutput != "" {
		cfg.Output.Dir = harvestOutput
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Harvest.Concurrency = harvestConcurrency
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Harvest.MaxPages = harvestMaxPages
	}
	if cmd.Flags().Changed("wait") {
		cfg.Harvest.WaitForReset = harvestWait
	}

	collections, err := parseCollections(harvestCollections)
	if err != nil {
		return err
	}

	// 2. Load credentials and build the pool.
	creds, err := file.LoadCredentials(envFile, cfg.Credentials.Quota)
	if err != nil {
		return err
	}
	if harvestProbeQuota {
		probeQuotas(ctx, creds)
	}
	pool := services.NewTokenPool(creds, services.PoolOptions{
		SafetyMargin: cfg.Credentials.SafetyMargin,
		ResetWindow:  cfg.Credentials.ResetWindow.Std(),
	})

	// 3. Wire the source and the stores.
	source := github.NewSource(github.Options{
		Owner:          cfg.Repository.Owner,
		Name:           cfg.Repository.Name,
		PageSize:       cfg.Harvest.PageSize,
		ReviewPageSize: cfg.Harvest.ReviewPageSize,
		Timeout:        cfg.Harvest.Timeout.Std(),
		Pacing:         cfg.Harvest.Pacing.Std(),
		BodyLimit:      cfg.Harvest.BodyLimit,
		APIURL:         apiBaseURL,
	})
	writer, err := flatfile.NewRecordWriter(cfg.Output.Dir, cfg.Harvest.BatchSize)
	if err != nil {
		return err
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("closing record writer", "error", err)
		}
	}()
	checkpoints, err := flatfile.NewCheckpointStore(cfg.Output.Dir)
	if err != nil {
		return err
	}

	if harvestFresh {
		for _, collection := range collections {
			if err := checkpoints.Clear(ctx, collection); err != nil {
				return fmt.Errorf("clearing %s checkpoint: %w", collection, err)
			}
		}
	}

	// 4. Run and report.
	engine := services.NewHarvestEngine(source, pool, checkpoints, writer, services.EngineOptions{
		Concurrency:  cfg.Harvest.Concurrency,
		MaxPages:     cfg.Harvest.MaxPages,
		MaxAttempts:  cfg.Harvest.MaxAttempts,
		Backoff:      cfg.Harvest.RetryBackoff.Std(),
		WaitForReset: cfg.Harvest.WaitForReset,
	})

	cmd.Printf("Harvesting %s/%s into %s\n", cfg.Repository.Owner, cfg.Repository.Name, cfg.Output.Dir)
	report, runErr := engine.Harvest(ctx, collections)
	printReport(cmd, report, pool)
	return runErr
}

// probeQuotas replaces each credential's assumed budget with its live
// remaining quota. Credentials that fail the probe keep the configured
// ceiling; the pool will discover their real standing on first use.
func probeQuotas(ctx context.Context, creds []domain.Credential) {
	for i := range creds {
		probe := github.ProbeCredential(ctx, &creds[i], apiBaseURL)
		if probe.Err != nil {
			logger.Warn("quota probe failed", "credential", creds[i].ID, "error", probe.Err)
			continue
		}
		creds[i].Remaining = probe.Remaining
		creds[i].Limit = probe.Limit
		logger.Info("quota probed",
			"credential", creds[i].ID,
			"remaining", probe.Remaining,
			"limit", probe.Limit)
	}
}

// parseCollections resolves the --collections flag. Empty means all.
func parseCollections(names []string) ([]domain.Collection, error) {
	if len(names) == 0 {
		return domain.AllCollections(), nil
	}
	collections := make([]domain.Collection, 0, len(names))
	for _, name := range names {
		collection, err := domain.ParseCollection(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	return collections, nil
}

// splitRepo parses an owner/name flag value.
func splitRepo(s string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return owner, name, nil
}

func printReport(cmd *cobra.Command, report *domain.HarvestReport, pool *services.TokenPool) {
	duration := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	cmd.Printf("Run %s finished in %s\n", report.RunID, duration)

	for _, cr := range report.Collections {
		switch {
		case cr.Err != nil:
			cmd.Printf("  %-14s %4d pages %6d records  FAILED: %v\n",
				cr.Collection, cr.Pages, cr.Records, cr.Err)
		case !cr.Complete:
			cmd.Printf("  %-14s %4d pages %6d records  stopped at page cap\n",
				cr.Collection, cr.Pages, cr.Records)
		default:
			cmd.Printf("  %-14s %4d pages %6d records  complete\n",
				cr.Collection, cr.Pages, cr.Records)
		}
		if cr.Skipped > 0 {
			cmd.Printf("  %-14s %d malformed records skipped\n", "", cr.Skipped)
		}
	}

	cmd.Printf("Total records written: %d\n", report.Records())
	for _, cred := range pool.Snapshot() {
		cmd.Printf("  %s: %d/%d requests left\n", cred.ID, cred.Remaining, cred.Limit)
	}
}
