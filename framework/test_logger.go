package framework

// TestLogger receives progress while scenarios run. Every test gets TestStarted followed by
// exactly one of TestFinished or TestSkipped; TestError may come in between, once per
// error. For a scenario with rows, such as the is-liked checks, the rows are reported
// before the scenario itself finishes.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	// TestFinished gets the debug lines captured while the test ran, whether or not it failed.
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	// TestSkipped is called instead of TestFinished for a scenario that was not run: not
	// tagged, filtered out, or waiting on a requirement that did not pass.
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}
