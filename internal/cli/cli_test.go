package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoguard/internal/github/githubtest"
	"repoguard/internal/signature"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"GH_API_TOKEN", "GH_BASE_ENDPOINT", "SERVICE_SECRET", "JIRA_BASE_URL", "LOG_LEVEL", "LOG_FORMAT", "BULK_CONCURRENCY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestSignCommand(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("SERVICE_SECRET", "cli-secret")

	payload := []byte(`{"action":"created"}`)
	path := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	out, err := runCmd(t, "", "sign", path)
	require.NoError(t, err)
	assert.Equal(t, signature.Sign(payload, "cli-secret")+"\n", out)

	out, err = runCmd(t, string(payload), "sign", "-")
	require.NoError(t, err)
	assert.Equal(t, signature.Sign(payload, "cli-secret")+"\n", out)
}

func TestSignCommandRequiresSecret(t *testing.T) {
	isolateEnv(t)

	_, err := runCmd(t, "{}", "sign", "-")
	assert.ErrorContains(t, err, "SERVICE_SECRET")
}

func TestProtectCommandRunsWorkflowPerRepository(t *testing.T) {
	isolateEnv(t)
	srv := githubtest.NewServer(t)
	srv.Respond("GET", "/repos/org/broken", http.StatusInternalServerError, `{"message":"boom"}`)
	srv.Respond("GET", "/repos/org/repo", http.StatusOK,
		`{"full_name":"org/repo","default_branch":"main","contents_url":"`+srv.URL+`/repos/org/repo/contents/{+path}"}`)
	srv.Respond("PUT", "/repos/org/repo/contents/README.md", http.StatusCreated, `{}`)
	srv.Respond("PUT", "/repos/org/repo/branches/main/protection", http.StatusOK, `{}`)
	srv.Respond("POST", "/repos/org/repo/issues", http.StatusCreated, `{"html_url":"https://github.example.com/org/repo/issues/1"}`)

	t.Setenv("GH_API_TOKEN", "tok")
	t.Setenv("GH_BASE_ENDPOINT", srv.URL)
	t.Setenv("LOG_LEVEL", "error")

	_, err := runCmd(t, "", "protect", "org/broken", "org/repo")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /repos/org/broken",
		"GET /repos/org/repo",
		"GET /repos/org/repo/branches/main",
		"PUT /repos/org/repo/contents/README.md",
		"PUT /repos/org/repo/branches/main/protection",
		"POST /repos/org/repo/issues",
	}, srv.Requests())
}

func TestProtectCommandNeedsArguments(t *testing.T) {
	isolateEnv(t)

	_, err := runCmd(t, "", "protect")
	assert.Error(t, err)
}

func TestServeRequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GH_API_TOKEN", "tok")

	_, err := runCmd(t, "", "serve")
	assert.ErrorContains(t, err, "SERVICE_SECRET")
}
