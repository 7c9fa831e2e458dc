package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is consulted when no --config flag is given.
const DefaultConfigFile = "forgemine.toml"

// Duration wraps time.Duration so TOML fields accept strings such as
// "800ms" or "1h".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration for a harvest run.
type Config struct {
	Repository  RepositoryConfig  `toml:"repository"`
	Harvest     HarvestConfig     `toml:"harvest"`
	Credentials CredentialsConfig `toml:"credentials"`
	Output      OutputConfig      `toml:"output"`
}

// RepositoryConfig names the repository to harvest.
type RepositoryConfig struct {
	// Owner is the user or organisation owning the repository.
	Owner string `toml:"owner"`

	// Name is the repository name without the owner prefix.
	Name string `toml:"name"`
}

// HarvestConfig tunes how pages are fetched and written.
type HarvestConfig struct {
	// PageSize is how many items each page requests, capped at 100 by
	// the remote.
	PageSize int `toml:"page_size"`

	// ReviewPageSize is the outer page size when walking pull requests
	// for their reviews. Reviews nest under their pull request, so the
	// outer walk stays smaller.
	ReviewPageSize int `toml:"review_page_size"`

	// BatchSize is how many rows buffer in the writer before an
	// automatic flush.
	BatchSize int `toml:"batch_size"`

	// MaxAttempts is the per-page fetch budget for transient failures.
	MaxAttempts int `toml:"max_attempts"`

	// Pacing is the minimum gap between consecutive requests.
	Pacing Duration `toml:"pacing"`

	// Timeout bounds a single page request.
	Timeout Duration `toml:"timeout"`

	// RetryBackoff is the base delay between transient retries.
	RetryBackoff Duration `toml:"retry_backoff"`

	// BodyLimit truncates issue, comment and review bodies to this
	// many characters. Zero keeps bodies whole.
	BodyLimit int `toml:"body_limit"`

	// Concurrency caps how many collections harvest at once. Zero or
	// one runs them sequentially.
	Concurrency int `toml:"concurrency"`

	// WaitForReset makes the harvest sleep through quota exhaustion
	// instead of stopping.
	WaitForReset bool `toml:"wait_for_reset"`

	// MaxPages stops each collection after this many pages per run.
	// Zero means no cap.
	MaxPages int `toml:"max_pages"`
}

// CredentialsConfig tunes the token pool.
type CredentialsConfig struct {
	// Quota is the assumed request budget per token when the remote
	// has not reported one yet.
	Quota int `toml:"quota"`

	// SafetyMargin is the number of requests kept in reserve on every
	// token.
	SafetyMargin int `toml:"safety_margin"`

	// ResetWindow is how long an exhausted token rests when the remote
	// gave no reset hint.
	ResetWindow Duration `toml:"reset_window"`
}

// OutputConfig places the harvest output.
type OutputConfig struct {
	// Dir is the directory holding record files and checkpoints.
	Dir string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Harvest: HarvestConfig{
			PageSize:       100,
			ReviewPageSize: 50,
			BatchSize:      1000,
			MaxAttempts:    3,
			Pacing:         Duration(800 * time.Millisecond),
			Timeout:        Duration(30 * time.Second),
			RetryBackoff:   Duration(30 * time.Second),
			BodyLimit:      1000,
		},
		Credentials: CredentialsConfig{
			Quota:        2500,
			SafetyMargin: 1,
			ResetWindow:  Duration(time.Hour),
		},
		Output: OutputConfig{
			Dir: "data",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path tries
// the default file and falls back to plain defaults when it is absent;
// an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the harvest cannot run with. The repository
// is checked separately because flags may supply it.
func (c Config) Validate() error {
	if c.Harvest.PageSize < 1 || c.Harvest.PageSize > 100 {
		return fmt.Errorf("harvest.page_size must be between 1 and 100, got %d", c.Harvest.PageSize)
	}
	if c.Harvest.ReviewPageSize < 1 || c.Harvest.ReviewPageSize > 100 {
		return fmt.Errorf("harvest.review_page_size must be between 1 and 100, got %d", c.Harvest.ReviewPageSize)
	}
	if c.Harvest.BatchSize < 1 {
		return fmt.Errorf("harvest.batch_size must be positive, got %d", c.Harvest.BatchSize)
	}
	if c.Harvest.MaxAttempts < 1 {
		return fmt.Errorf("harvest.max_attempts must be positive, got %d", c.Harvest.MaxAttempts)
	}
	if c.Harvest.Pacing.Std() < 0 {
		return fmt.Errorf("harvest.pacing must not be negative")
	}
	if c.Harvest.Timeout.Std() <= 0 {
		return fmt.Errorf("harvest.timeout must be positive")
	}
	if c.Harvest.BodyLimit < 0 {
		return fmt.Errorf("harvest.body_limit must not be negative, got %d", c.Harvest.BodyLimit)
	}
	if c.Harvest.Concurrency < 0 {
		return fmt.Errorf("harvest.concurrency must not be negative, got %d", c.Harvest.Concurrency)
	}
	if c.Credentials.Quota < 1 {
		return fmt.Errorf("credentials.quota must be positive, got %d", c.Credentials.Quota)
	}
	if c.Credentials.SafetyMargin < 0 {
		return fmt.Errorf("credentials.safety_margin must not be negative, got %d", c.Credentials.SafetyMargin)
	}
	return nil
}
