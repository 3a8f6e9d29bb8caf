// Package reporter emits per-file test results: TAP, console or go test
package reporter

// Reporter receives the result stream of one run. Calls happen in order:
// at most one of Plan, SkipAll or Abort, then Pass/Fail per file, then Done
// exactly once.
type Reporter interface {
	// Plan announces how many tests will run
	Plan(count int)

	// SkipAll declares the whole run skipped with zero tests
	SkipAll(reason string)

	// Abort records that the run stopped on a fatal error before any test;
	// Done then emits nothing
	Abort(err error)

	// Pass records a passing test
	Pass(name string)

	// Fail records a failing test with its diagnostics
	Fail(name string, diagnostics []string)

	// Done finalizes the stream; it returns ErrChecksFailed when any test failed
	Done() error
}

// Counts tracks what a reporter has seen
type Counts struct {
	Planned int
	HasPlan bool
	Skipped bool
	Aborted bool
	Passed  int
	Failed  int
}

// Run returns the number of tests reported so far
func (c Counts) Run() int {
	return c.Passed + c.Failed
}
