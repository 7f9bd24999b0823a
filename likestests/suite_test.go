package likestests

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkqa/likes-contract-tests/framework"
	"github.com/vkqa/likes-contract-tests/session"
	"github.com/vkqa/likes-contract-tests/vkapi"
	"github.com/vkqa/likes-contract-tests/vkapi/vkapitest"
)

const (
	testUserID = 42
	testToken  = "test-user-token"
)

// newFakeAPIWithOwners starts a fake API in which the given owners reject calls with an access
// error or as private profiles.
func newFakeAPIWithOwners(t *testing.T, accessDenied, private []int) (*vkapitest.Server, *Harness) {
	server := vkapitest.NewServer()
	t.Cleanup(server.Close)
	server.AddUser(vkapitest.User{ID: testUserID, AccessToken: testToken})
	for _, id := range accessDenied {
		server.SetAccessDenied(id)
	}
	for _, id := range private {
		server.SetPrivateProfile(id)
	}

	cred, err := session.NewCredential(testUserID, testToken)
	require.NoError(t, err)
	client := vkapi.NewClient(vkapi.WithBaseURL(server.MethodURL()))
	return server, NewHarness(client, cred, time.Second*5)
}

func newFakeAPI(t *testing.T) (*vkapitest.Server, *Harness) {
	return newFakeAPIWithOwners(t, []int{accessDeniedOwnerID}, []int{privateProfileOwnerID})
}

type nopTestLogger struct{}

func (nopTestLogger) TestStarted(framework.TestID)                                  {}
func (nopTestLogger) TestError(framework.TestID, error)                             {}
func (nopTestLogger) TestFinished(framework.TestID, bool, framework.CapturedOutput) {}
func (nopTestLogger) TestSkipped(framework.TestID, string)                          {}

type startedTests struct {
	nopTestLogger
	started []string
}

func (s *startedTests) TestStarted(id framework.TestID) {
	s.started = append(s.started, id.String())
}

func failedIDs(results framework.Results) []string {
	var ids []string
	for _, f := range results.Failures {
		ids = append(ids, f.TestID.String())
	}
	return ids
}

func resultFor(results framework.Results, id string) framework.TestResult {
	for _, r := range results.Tests {
		if r.TestID.String() == id {
			return r
		}
	}
	return framework.TestResult{Status: framework.NotRun}
}

func TestSuitePassesAgainstFakeAPI(t *testing.T) {
	server, harness := newFakeAPI(t)
	logger := &startedTests{}

	results, err := RunTestSuite(harness, SuiteOptions{}, logger)
	require.NoError(t, err)
	assert.True(t, results.OK(), "failures: %v", failedIDs(results))
	assert.Empty(t, results.Skipped)

	assert.Equal(t, []string{
		"reset like state",
		"add like to post",
		"add like with private owner",
		"is liked with private owner",
		"get likes owners without item id",
		"delete nonexistent like",
		"is liked",
		"is liked/liked post",
		"is liked/random unliked post",
		"get likes owners",
		"delete like from post",
		"like state restored",
	}, logger.started)
	assert.Empty(t, server.Likers(vkapi.TypePost, testUserID, defaultItemID))
}

func TestLeftoverLikeIsCleared(t *testing.T) {
	server, harness := newFakeAPI(t)
	server.SetLiked(vkapi.TypePost, testUserID, defaultItemID, testUserID)

	results, err := RunTestSuite(harness, SuiteOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, results.OK(), "failures: %v", failedIDs(results))
	assert.Equal(t, "likes.isLiked", server.Calls()[0])
	assert.Equal(t, "likes.delete", server.Calls()[1])
}

func TestRepeatedRunsGiveSameResults(t *testing.T) {
	_, harness := newFakeAPI(t)

	results, err := RunTestSuite(harness, SuiteOptions{Repeat: 3}, nil)
	require.NoError(t, err)
	assert.True(t, results.OK(), "failures: %v", failedIDs(results))
	for _, pass := range []string{"pass 1", "pass 2", "pass 3"} {
		assert.Equal(t, framework.Passed, resultFor(results, pass+"/add like to post").Status)
		assert.Equal(t, framework.Passed, resultFor(results, pass+"/like state restored").Status)
	}
}

func TestPassedCountsScenariosAndRowsOnly(t *testing.T) {
	_, harness := newFakeAPI(t)

	once, err := RunTestSuite(harness, SuiteOptions{}, nil)
	require.NoError(t, err)
	// "is liked" counts as its two rows.
	assert.Equal(t, len(AllScenarios)+1, once.Passed())

	twice, err := RunTestSuite(harness, SuiteOptions{Repeat: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*once.Passed(), twice.Passed())
	assert.True(t, resultFor(twice, "pass 1").Group)
	assert.True(t, resultFor(twice, "pass 1/is liked").Group)
}

func TestUnknownTagRunsNothing(t *testing.T) {
	server, harness := newFakeAPI(t)

	results, err := RunTestSuite(harness, SuiteOptions{Tags: []string{TagSmoke, "smok"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"smok"`)
	assert.Empty(t, results.Tests)
	assert.Empty(t, server.Calls())

	assert.NoError(t, CheckTags([]string{TagSetup, TagSmoke, TagLikes}))
	assert.NoError(t, CheckTags(nil))
	assert.Error(t, CheckTags([]string{"Smoke"}))
}

func TestRunPlannedSuiteReusesPlan(t *testing.T) {
	_, harness := newFakeAPI(t)
	plan, err := Plan(harness)
	require.NoError(t, err)

	logger := &startedTests{}
	results, err := RunPlannedSuite(plan, SuiteOptions{}, logger)
	require.NoError(t, err)
	assert.True(t, results.OK(), "failures: %v", failedIDs(results))
	assert.Equal(t, plan[0].Name, logger.started[0])
}

func TestAccessErrorIsNotAcceptedAsPrivateProfile(t *testing.T) {
	// Owner 2 answers with an access error instead of a private profile error.
	_, harness := newFakeAPIWithOwners(t, []int{accessDeniedOwnerID, privateProfileOwnerID}, nil)

	results, err := RunTestSuite(harness, SuiteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"add like with private owner"}, failedIDs(results))

	errs := resultFor(results, "add like with private owner").Errors
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "expected private profile error 30")
	assert.Contains(t, errs[0].Error(), "got access error 15")
}

func TestPrivateProfileIsNotAcceptedAsAccessError(t *testing.T) {
	_, harness := newFakeAPIWithOwners(t, nil, []int{accessDeniedOwnerID, privateProfileOwnerID})

	results, err := RunTestSuite(harness, SuiteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"is liked with private owner"}, failedIDs(results))
}

func TestDependentsAreSkippedWhenSetupFails(t *testing.T) {
	// The user's own wall is private, so even the setup check fails.
	_, harness := newFakeAPIWithOwners(t, []int{accessDeniedOwnerID}, []int{privateProfileOwnerID, testUserID})

	results, err := RunTestSuite(harness, SuiteOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, framework.Failed, resultFor(results, "reset like state").Status)

	add := resultFor(results, "add like to post")
	assert.Equal(t, framework.Skipped, add.Status)
	assert.Equal(t, `required scenario "reset like state" failed`, add.SkipReason)
	for _, name := range []string{"is liked", "get likes owners", "delete like from post", "like state restored"} {
		assert.Equal(t, framework.Skipped, resultFor(results, name).Status, name)
	}
	assert.Equal(t, framework.Passed, resultFor(results, "add like with private owner").Status)
}

func TestTagsSelectScenariosAndTheirRequirements(t *testing.T) {
	server, harness := newFakeAPI(t)

	results, err := RunTestSuite(harness, SuiteOptions{Tags: []string{TagSmoke}}, nil)
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, framework.Passed, resultFor(results, "reset like state").Status)
	assert.Equal(t, framework.Passed, resultFor(results, "like state restored").Status)

	skipped := resultFor(results, "delete nonexistent like")
	assert.Equal(t, framework.Skipped, skipped.Status)
	assert.Equal(t, "not tagged smoke", skipped.SkipReason)
	getListCalls := 0
	for _, call := range server.Calls() {
		if call == "likes.getList" {
			getListCalls++
		}
	}
	assert.Equal(t, 1, getListCalls, "only the smoke getList scenario should call the API")
}

func TestFilteredOutRequirementSkipsDependents(t *testing.T) {
	_, harness := newFakeAPI(t)
	var filters framework.RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^add like to post$"))

	results, err := RunTestSuite(harness, SuiteOptions{Filter: filters.AsFilter}, nil)
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, "excluded by filter parameters", resultFor(results, "add like to post").SkipReason)
	assert.True(t, strings.HasPrefix(resultFor(results, "is liked").SkipReason, `required scenario "add like to post"`))
}

func TestPlanIsValid(t *testing.T) {
	_, harness := newFakeAPI(t)
	plan, err := Plan(harness)
	require.NoError(t, err)
	assert.Len(t, plan, len(AllScenarios))
	assert.Equal(t, resetLikeState, plan[0].Name)
}

type debugOutputs struct {
	nopTestLogger
	output map[string]framework.CapturedOutput
}

func (d *debugOutputs) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	d.output[id.String()] = debugOutput
}

func TestRequestsAreWrittenToDebugOutput(t *testing.T) {
	_, harness := newFakeAPI(t)
	logger := &debugOutputs{output: map[string]framework.CapturedOutput{}}

	_, err := RunTestSuite(harness, SuiteOptions{}, logger)
	require.NoError(t, err)

	var messages []string
	for _, m := range logger.output["add like to post"] {
		messages = append(messages, m.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "Sending API request")
	assert.Contains(t, joined, "method=likes.add")
	assert.NotContains(t, joined, testToken)
}
