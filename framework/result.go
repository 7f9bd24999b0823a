package framework

import (
	"fmt"
	"strings"
	"time"
)

// Status is the state of a single test. A test that was never reached stays NotRun.
type Status int

const (
	NotRun Status = iota
	Running
	Passed
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "not run"
	}
}

// MarshalText makes statuses readable in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

type TestResult struct {
	TestID     TestID
	Status     Status
	Errors     []error
	SkipReason string
	// Group is true if the test ran or skipped subtests of its own. A group's status
	// summarizes its subtests.
	Group    bool
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the number of tests that ran to completion without failing. Groups are not
// counted, so a scenario with two passing subtests counts as two.
func (r Results) Passed() int {
	n := 0
	for _, t := range r.Tests {
		if t.Status == Passed && !t.Group {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name is the last path component.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
