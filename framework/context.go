package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

func (e *environment) record(result TestResult, ownFailure bool) {
	e.results.Tests = append(e.results.Tests, result)
	switch result.Status {
	case Failed:
		if ownFailure {
			e.results.Failures = append(e.results.Failures, result)
		}
	case Skipped:
		e.results.Skipped = append(e.results.Skipped, result)
	}
}

// Context is the framework's equivalent of *testing.T. Contexts are not safe for concurrent
// use; tests run one at a time.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	childFailed bool
	hasSubtests bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run creates a root context and runs the action in it. The root itself is not reported as a
// test unless the action fails outside of any subtest.
//
// The filter applies to scenarios started with RunPlan; a nil filter accepts everything.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	if c.failed {
		env.record(TestResult{TestID: c.id, Status: Failed, Errors: c.errors}, true)
	}
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest and returns its final status. If the subtest fails, this context is
// reported as failed too, but its own error list is unchanged.
func (c *Context) Run(name string, action func(*Context)) Status {
	id := c.id.Plus(name)
	c.hasSubtests = true

	c.env.testLogger.TestStarted(id)
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	started := time.Now()
	c1.run(action)

	result := TestResult{TestID: id, Errors: c1.errors, Group: c1.hasSubtests, Duration: time.Since(started)}
	switch {
	case c1.skipped:
		result.Status = Skipped
		result.SkipReason = c1.skipReason
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	case c1.failed || c1.childFailed:
		result.Status = Failed
		c.childFailed = true
		c.env.testLogger.TestFinished(id, true, c1.debugLogger.Output())
	default:
		result.Status = Passed
		c.env.testLogger.TestFinished(id, false, c1.debugLogger.Output())
	}
	c.env.record(result, c1.failed)
	return result.Status
}

// SkipSubtest reports a subtest as skipped without running it.
func (c *Context) SkipSubtest(name string, reason string) Status {
	id := c.id.Plus(name)
	c.hasSubtests = true
	c.env.testLogger.TestStarted(id)
	c.env.testLogger.TestSkipped(id, reason)
	c.env.record(TestResult{TestID: id, Status: Skipped, SkipReason: reason}, false)
	return Skipped
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError strips the indentation and blank lines that testify puts in its failure
// messages, which are meant for the Go test runner's output.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return errors.New(strings.Join(kept, "\n"))
}
