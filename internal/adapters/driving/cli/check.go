package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgemine/forgemine/internal/adapters/driven/config/file"
	"github.com/forgemine/forgemine/internal/connectors/github"
	"github.com/forgemine/forgemine/internal/core/domain"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configured tokens and the target repository",
	Long: `Verifies every configured token against the API and reports its
authenticated account and remaining GraphQL quota. When a repository is
configured, the first valid token also fetches a short overview of it.
Exits non-zero when no token is valid.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := file.LoadConfig(configPath)
	if err != nil {
		return err
	}
	creds, err := file.LoadCredentials(envFile, cfg.Credentials.Quota)
	if err != nil {
		return err
	}

	cmd.Printf("Checking %d token(s)\n", len(creds))

	var firstValid *domain.Credential
	for i := range creds {
		probe := github.ProbeCredential(ctx, &creds[i], apiBaseURL)
		if probe.Err != nil {
			cmd.Printf("  %s: INVALID (%v)\n", creds[i].ID, probe.Err)
			continue
		}
		cmd.Printf("  %s: ok, %s, %d/%d GraphQL points, resets %s\n",
			probe.CredentialID, probe.Login, probe.Remaining, probe.Limit,
			probe.ResetAt.Format(time.RFC3339))
		if firstValid == nil {
			firstValid = &creds[i]
		}
	}
	if firstValid == nil {
		return fmt.Errorf("%w: no token passed verification", domain.ErrNoCredentials)
	}

	if cfg.Repository.Owner == "" || cfg.Repository.Name == "" {
		return nil
	}

	source := github.NewSource(github.Options{
		Owner:  cfg.Repository.Owner,
		Name:   cfg.Repository.Name,
		Pacing: cfg.Harvest.Pacing.Std(),
		APIURL: apiBaseURL,
	})
	overview, err := source.Overview(ctx, firstValid)
	if err != nil {
		return fmt.Errorf("repository check: %w", err)
	}

	cmd.Printf("\n%s\n", overview.NameWithOwner)
	if overview.Description != "" {
		cmd.Printf("  %s\n", overview.Description)
	}
	cmd.Printf("  %d stars, %d forks\n", overview.Stars, overview.Forks)
	cmd.Printf("  %d issues, %d pull requests\n", overview.Issues, overview.PullRequests)
	return nil
}
