package reporter

import (
	"strings"
	"testing"
)

// Testing reports results through a go test handle
type Testing struct {
	tb     testing.TB
	counts Counts
}

// NewTesting creates a reporter over tb
func NewTesting(tb testing.TB) *Testing {
	return &Testing{tb: tb}
}

// Counts returns the counts seen so far
func (r *Testing) Counts() Counts {
	return r.counts
}

// Plan implements Reporter
func (r *Testing) Plan(count int) {
	r.tb.Helper()
	r.counts.Planned = count
	r.counts.HasPlan = true
	r.tb.Logf("1..%d", count)
}

// SkipAll implements Reporter. It stops the calling test, so the caller
// must release resources with defer.
func (r *Testing) SkipAll(reason string) {
	r.tb.Helper()
	r.counts.Skipped = true
	r.tb.Skip(reason)
}

// Abort implements Reporter
func (r *Testing) Abort(error) {
	r.counts.Aborted = true
}

// Pass implements Reporter
func (r *Testing) Pass(name string) {
	r.tb.Helper()
	r.counts.Passed++
	r.tb.Logf("ok %d - %s", r.counts.Run(), name)
}

// Fail implements Reporter
func (r *Testing) Fail(name string, diagnostics []string) {
	r.tb.Helper()
	r.counts.Failed++
	r.tb.Errorf("not ok %d - %s\n%s", r.counts.Run(), name, strings.Join(diagnostics, "\n"))
}

// Done implements Reporter. Failures were already recorded on the test handle.
func (r *Testing) Done() error {
	r.tb.Helper()
	if r.counts.HasPlan && !r.counts.Skipped && !r.counts.Aborted && r.counts.Planned != r.counts.Run() {
		r.tb.Errorf("planned %d tests but ran %d", r.counts.Planned, r.counts.Run())
	}
	return nil
}
