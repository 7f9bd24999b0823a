// Package framework contains the low-level implementation of test runner infrastructure that
// is not specific to the likes API.
//
// The general model is:
//
// 1. There is a test context which is similar to Go's *testing.T, allowing pieces of test logic
// to be associated with a test identifier and to accumulate success/failure results. Tests run
// sequentially in a single goroutine, outside of the Go test runner.
//
// 2. Tests can be declared as Scenarios, which carry tags, a priority, and the names of other
// scenarios they depend on. Plan puts them in a deterministic order, and Context.RunPlan runs
// them, skipping any scenario whose dependencies did not pass.
//
// The domain-specific code that knows what is being tested is responsible for providing the
// scenarios and a domain-specific test API on top of the test context.
package framework
