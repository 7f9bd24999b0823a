package likestests

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vkqa/likes-contract-tests/framework"
	"github.com/vkqa/likes-contract-tests/vkapi"
)

// T represents a test or subtest in our likes test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with some extra features such as debug logging that are
// convenient for our use case. Those features are provided by our lower-level framework package.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if it
// were a *testing.T, or compare an Outcome against an Expectation with Expect.
type T struct {
	context *framework.Context
	harness *Harness
	client  *vkapi.Client
	cancels []context.CancelFunc
}

func newTestScope(context *framework.Context, harness *Harness) *T {
	return &T{context: context, harness: harness}
}

func (t *T) close() {
	for _, cancel := range t.cancels {
		cancel()
	}
	t.cancels = nil
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := newTestScope(c, t.harness)
		defer t1.close()
		action(t1)
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Actor is the credential every call in the run is made with.
func (t *T) Actor() vkapi.UserActor {
	return t.harness.credential.Actor()
}

// UserID is the id of the user the run is authorized as.
func (t *T) UserID() int {
	return t.harness.credential.UserID()
}

// Likes returns the request builders for the likes.* methods. Requests and responses are
// written to the test's debug output.
func (t *T) Likes() *vkapi.Likes {
	if t.client == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
		logger.SetOutput(debugWriter{t.context.DebugLogger()})
		t.client = t.harness.client.Derive(vkapi.WithLogger(logger))
	}
	return t.client.Likes()
}

// Ctx returns a context for a single API call, bounded by the request timeout. It is canceled
// when the test ends.
func (t *T) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), t.harness.requestTimeout)
	t.cancels = append(t.cancels, cancel)
	return ctx
}

// Expect fails the test and immediately exits if the outcome does not meet the expectation.
func (t *T) Expect(outcome Outcome, expectation Expectation) {
	t.Debug("expecting %s, got %s", expectation, outcome)
	if err := expectation.Verify(outcome); err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
}

func (t *T) randomItemID(from, to int) int {
	return from + t.harness.rand.Intn(to-from+1)
}

// debugWriter turns each formatted log line into a debug message.
type debugWriter struct {
	logger framework.Logger
}

func (w debugWriter) Write(p []byte) (int, error) {
	w.logger.Printf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
