package file

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/logger"
)

// maxTokenGap is the highest slot where a numbering gap is tolerated.
// Beyond it the scan stops at the first empty slot.
const maxTokenGap = 10

// LoadCredentials reads GitHub tokens from the environment, after
// loading a .env file when one is available. Tokens are named
// GITHUB_TOKEN_1, GITHUB_TOKEN_2 and so on; a single unnumbered
// GITHUB_TOKEN works as a fallback. Each credential starts with the
// given quota estimate.
//
// envFile names an explicit .env file to load; empty means a best
// effort load of ./.env. Variables already set in the environment win
// over the file either way.
func LoadCredentials(envFile string, quota int) ([]domain.Credential, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err == nil {
		logger.Debug("loaded tokens from .env")
	}

	var creds []domain.Credential
	for i := 1; ; i++ {
		key := fmt.Sprintf("GITHUB_TOKEN_%d", i)
		token := strings.TrimSpace(os.Getenv(key))
		if token == "" {
			if i <= maxTokenGap {
				continue
			}
			break
		}
		creds = append(creds, newCredential(key, token, quota))
	}

	if len(creds) == 0 {
		if token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); token != "" {
			creds = append(creds, newCredential("GITHUB_TOKEN", token, quota))
		}
	}

	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN_1..n or GITHUB_TOKEN", domain.ErrNoCredentials)
	}

	logger.Info("credentials loaded", "count", len(creds), "quota", quota)
	return creds, nil
}

func newCredential(id, token string, quota int) domain.Credential {
	return domain.Credential{
		ID:        id,
		Token:     token,
		Remaining: quota,
		Limit:     quota,
	}
}
