package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkqa/likes-contract-tests/framework"
	"github.com/vkqa/likes-contract-tests/vkapi/vkapitest"
)

const (
	testAppID       = 5551
	testSecret      = "app-secret"
	testRedirectURI = "https://oauth.example.com/blank.html"
	testCode        = "one-time-code"
	testUserID      = 42
)

func init() {
	color.NoColor = true
}

// withFakeAPI starts a fake API and points the configuration environment at it.
func withFakeAPI(t *testing.T) *vkapitest.Server {
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	server := vkapitest.NewServer()
	t.Cleanup(server.Close)
	server.AddApp(vkapitest.App{ID: testAppID, Secret: testSecret, RedirectURI: testRedirectURI})
	server.IssueCode(testCode, testUserID)

	t.Setenv("LIKES_USER_APP_ID", strconv.Itoa(testAppID))
	t.Setenv("LIKES_USER_CLIENT_SECRET", testSecret)
	t.Setenv("LIKES_URI_REDIRECT", testRedirectURI)
	t.Setenv("LIKES_USER_CODE", testCode)
	t.Setenv("LIKES_API_URL", server.MethodURL())
	t.Setenv("LIKES_OAUTH_URL", server.TokenURL())
	return server
}

func TestRunAgainstFakeAPI(t *testing.T) {
	server := withFakeAPI(t)
	server.SetAccessDenied(1)
	server.SetPrivateProfile(2)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName, "-json", reportPath, "-log-level", "warn"}, &stdout, &stderr)
	assert.Equal(t, 0, code, "stdout: %s\nstderr: %s", stdout.String(), stderr.String())
	assert.Contains(t, stdout.String(), "Running test suite as user 42")
	assert.Contains(t, stdout.String(), "All tests passed")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, true, report["ok"])
}

func TestMissingConfigurationFailsBeforeAnyCall(t *testing.T) {
	server := withFakeAPI(t)
	t.Setenv("LIKES_USER_CODE", "")
	t.Setenv("LIKES_USER_CLIENT_SECRET", "")

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "user.client-secret, user.code")
	assert.Empty(t, server.Calls())
}

func TestRejectedCodeFailsBeforeTests(t *testing.T) {
	server := withFakeAPI(t)
	t.Setenv("LIKES_USER_CODE", "stale-code")

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Could not start a session")
	assert.Equal(t, []string{"access_token"}, server.Calls())
}

func TestUnknownTagFailsBeforeAnyCall(t *testing.T) {
	server := withFakeAPI(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName, "-tag", "smok"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `unknown tag "smok"`)
	assert.NotContains(t, stdout.String(), "All tests passed")
	assert.Empty(t, server.Calls())
}

func TestRepeatedRunCountsLeafTests(t *testing.T) {
	server := withFakeAPI(t)
	server.SetAccessDenied(1)
	server.SetPrivateProfile(2)

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName, "-repeat", "2", "-log-level", "warn"}, &stdout, &stderr)
	assert.Equal(t, 0, code, "stdout: %s\nstderr: %s", stdout.String(), stderr.String())
	assert.Contains(t, stdout.String(), "All tests passed (22 passed, 0 failed, 0 skipped)")
}

func TestFailedRunPrintsRerunHint(t *testing.T) {
	server := withFakeAPI(t)
	server.SetAccessDenied(1)
	server.SetAccessDenied(2)

	var stdout, stderr bytes.Buffer
	code := run([]string{commandName, "-log-level", "error"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "FAILED: add like with private owner")
	assert.Contains(t, stdout.String(), "likes-contract-tests -run '^(add like with private owner)$'")
}

func TestListScenarios(t *testing.T) {
	var stdout bytes.Buffer
	assert.Equal(t, 0, listScenarios(&stdout))
	assert.Contains(t, stdout.String(), "reset like state")
}

func TestInvalidParameters(t *testing.T) {
	var params commandParams
	var stderr bytes.Buffer
	assert.False(t, params.Read([]string{commandName, "-repeat", "0"}, &stderr))
	assert.False(t, params.Read([]string{commandName, "-run", "("}, &stderr))
	assert.False(t, params.Read([]string{commandName, "extra"}, &stderr))
}

func TestRerunCommandIncludesConfigSources(t *testing.T) {
	params := commandParams{configPath: "my config.yaml", envFile: ".env.test"}
	assert.Equal(t,
		`likes-contract-tests -config 'my config.yaml' -env-file .env.test -run '^(reset like state|add like to post)$'`,
		params.rerunCommand([]string{"reset like state", "add like to post"}))
}

func TestFailedScenariosMapsSubtestsAndPasses(t *testing.T) {
	results := framework.Results{Failures: []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"pass 1", "is liked", "liked post"}}},
		{TestID: framework.TestID{Path: []string{"pass 2", "is liked", "liked post"}}},
		{TestID: framework.TestID{Path: []string{"pass 2", "get likes owners"}}},
	}}
	assert.Equal(t, []string{"is liked", "get likes owners"}, failedScenarios(results, 2))
}

func TestConsoleTestLogger(t *testing.T) {
	var out bytes.Buffer
	logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	id := framework.TestID{Path: []string{"add like to post"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("expected 1\ngot 2"))
	logger.TestFinished(id, true, nil)
	logger.TestSkipped(framework.TestID{Path: []string{"is liked"}}, "required scenario failed")

	assert.Equal(t, "[add like to post]\n"+
		"  expected 1\n"+
		"  got 2\n"+
		"  FAILED: add like to post\n"+
		"  SKIPPED: is liked (required scenario failed)\n", out.String())
}
