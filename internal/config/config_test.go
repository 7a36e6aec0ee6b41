package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoguard/internal/templates"
)

// chdirTemp moves the test into an empty directory so no stray .env file
// is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GH_API_TOKEN", "GH_BASE_ENDPOINT", "GH_API_ACCEPT", "GH_VERBOSE", "ALERT_USERS",
		"SERVICE_SECRET", "PORT", "LOG_LEVEL", "LOG_FORMAT", "BULK_CONCURRENCY",
		"REPO_PROTECTION_TEMPLATE_FILE", "REPO_ISSUE_BODY_TEMPLATE_FILE",
		"REPO_ISSUE_TEMPLATE_FILE", "REPO_DEFAULT_README_FILE",
		"JIRA_BASE_URL", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEY", "JIRA_ISSUE_TYPE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, dotenv, err := Load()
	require.NoError(t, err)
	assert.False(t, dotenv)
	assert.Equal(t, "https://api.github.com", cfg.BaseEndpoint)
	assert.Equal(t, "application/vnd.github.v3+json", cfg.APIAccept)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 1, cfg.BulkConcurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "GOV", cfg.Jira.ProjectKey)
	assert.False(t, cfg.Jira.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("GH_API_TOKEN", "tok")
	t.Setenv("GH_BASE_ENDPOINT", "https://github.example.com/api/v3")
	t.Setenv("ALERT_USERS", "  @alice, @bob\n")
	t.Setenv("SERVICE_SECRET", "s3cret")
	t.Setenv("BULK_CONCURRENCY", "4")
	t.Setenv("REPO_PROTECTION_TEMPLATE_FILE", "/etc/repoguard/protection.json")
	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")
	t.Setenv("JIRA_EMAIL", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "jira-token")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.APIToken)
	assert.Equal(t, "https://github.example.com/api/v3", cfg.BaseEndpoint)
	assert.Equal(t, "@alice, @bob", cfg.AlertUsers)
	assert.Equal(t, 4, cfg.BulkConcurrency)
	assert.Equal(t, "/etc/repoguard/protection.json", cfg.TemplateFiles.Overrides()[templates.Protection])
	assert.Equal(t, "", cfg.TemplateFiles.Overrides()[templates.Readme])
	assert.True(t, cfg.Jira.Enabled())
	require.NoError(t, cfg.Validate(true))
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVICE_SECRET=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SERVICE_SECRET") })

	cfg, dotenv, err := Load()
	require.NoError(t, err)
	assert.True(t, dotenv)
	assert.Equal(t, "from-dotenv", cfg.ServiceSecret)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("BULK_CONCURRENCY", "many")

	_, _, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIToken:        "tok",
		BaseEndpoint:    "https://api.github.com",
		ServiceSecret:   "s",
		BulkConcurrency: 1,
	}
	require.NoError(t, valid.Validate(true))

	noSecret := valid
	noSecret.ServiceSecret = ""
	assert.Error(t, noSecret.Validate(true))
	assert.NoError(t, noSecret.Validate(false))

	badURL := valid
	badURL.BaseEndpoint = "api.github.com"
	assert.ErrorContains(t, badURL.Validate(true), "GH_BASE_ENDPOINT")

	badConcurrency := valid
	badConcurrency.BulkConcurrency = 0
	assert.ErrorContains(t, badConcurrency.Validate(true), "BULK_CONCURRENCY")

	noToken := valid
	noToken.APIToken = ""
	assert.ErrorContains(t, noToken.Validate(false), "GH_API_TOKEN")
}
