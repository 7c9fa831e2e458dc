package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/forgemine/forgemine/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool
)

// apiBaseURL overrides the GitHub endpoints. Empty targets github.com.
// Settable so tests can point the commands at a local server.
var apiBaseURL string

var rootCmd = &cobra.Command{
	Use:   "forgemine",
	Short: "Harvest GitHub repository data into local record files",
	Long: `Forgemine extracts the issues, pull requests, comments and reviews of a
GitHub repository into append-only CSV files. It rotates across multiple
API tokens and checkpoints after every durably written page, so an
interrupted run always resumes exactly where it left off.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the config file (default forgemine.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"load GITHUB_TOKEN_n variables from this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}
