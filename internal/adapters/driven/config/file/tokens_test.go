package file

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// clearTokenEnv removes every token variable for the duration of the
// test. t.Setenv registers the restore; the unset makes the variable
// truly absent rather than present-but-empty.
func clearTokenEnv(t *testing.T) {
	t.Helper()
	keys := []string{"GITHUB_TOKEN"}
	for i := 1; i <= 15; i++ {
		keys = append(keys, fmt.Sprintf("GITHUB_TOKEN_%d", i))
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadCredentials_Numbered(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN_1", "ghp_first")
	t.Setenv("GITHUB_TOKEN_2", "ghp_second")
	t.Setenv("GITHUB_TOKEN_3", "ghp_third")

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	require.Len(t, creds, 3)

	assert.Equal(t, "GITHUB_TOKEN_1", creds[0].ID)
	assert.Equal(t, "ghp_first", creds[0].Token)
	assert.Equal(t, "GITHUB_TOKEN_3", creds[2].ID)
}

func TestLoadCredentials_SeedsQuota(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN_1", "ghp_first")

	creds, err := LoadCredentials("", 100)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, 100, creds[0].Remaining)
	assert.Equal(t, 100, creds[0].Limit)
}

func TestLoadCredentials_ToleratesNumberingGaps(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN_1", "ghp_first")
	t.Setenv("GITHUB_TOKEN_4", "ghp_fourth")

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "GITHUB_TOKEN_1", creds[0].ID)
	assert.Equal(t, "GITHUB_TOKEN_4", creds[1].ID)
}

func TestLoadCredentials_ContinuesPastTenWhileConsecutive(t *testing.T) {
	clearTokenEnv(t)
	for i := 1; i <= 12; i++ {
		t.Setenv(fmt.Sprintf("GITHUB_TOKEN_%d", i), fmt.Sprintf("ghp_%d", i))
	}

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	assert.Len(t, creds, 12)
}

func TestLoadCredentials_TrimsWhitespace(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN_1", "  ghp_padded\n")

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "ghp_padded", creds[0].Token)
}

func TestLoadCredentials_PlainFallback(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_single")

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "GITHUB_TOKEN", creds[0].ID)
	assert.Equal(t, "ghp_single", creds[0].Token)
}

func TestLoadCredentials_NumberedWinsOverPlain(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_single")
	t.Setenv("GITHUB_TOKEN_1", "ghp_first")

	creds, err := LoadCredentials("", 2500)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "GITHUB_TOKEN_1", creds[0].ID)
}

func TestLoadCredentials_None(t *testing.T) {
	clearTokenEnv(t)

	creds, err := LoadCredentials("", 2500)
	assert.Nil(t, creds)
	assert.ErrorIs(t, err, domain.ErrNoCredentials)
}

func TestLoadCredentials_EnvFile(t *testing.T) {
	clearTokenEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "GITHUB_TOKEN_1=ghp_from_file\nGITHUB_TOKEN_2=ghp_also_file\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

	creds, err := LoadCredentials(envFile, 2500)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "ghp_from_file", creds[0].Token)
}

func TestLoadCredentials_EnvFileMissing(t *testing.T) {
	clearTokenEnv(t)

	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.env"), 2500)
	assert.Error(t, err)
}

func TestLoadCredentials_EnvironmentWinsOverFile(t *testing.T) {
	clearTokenEnv(t)
	t.Setenv("GITHUB_TOKEN_1", "ghp_from_env")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GITHUB_TOKEN_1=ghp_from_file\n"), 0600))

	creds, err := LoadCredentials(envFile, 2500)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "ghp_from_env", creds[0].Token)
}
