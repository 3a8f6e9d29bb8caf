package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
)

// TAP writes results in the Test Anything Protocol
type TAP struct {
	out    io.Writer
	counts Counts
}

// NewTAP creates a TAP reporter writing to out (stdout when nil)
func NewTAP(out io.Writer) *TAP {
	if out == nil {
		out = os.Stdout
	}
	return &TAP{out: out}
}

// Counts returns the counts seen so far
func (r *TAP) Counts() Counts {
	return r.counts
}

// Plan implements Reporter
func (r *TAP) Plan(count int) {
	r.counts.Planned = count
	r.counts.HasPlan = true
	r.printf("1..%d\n", count)
}

// SkipAll implements Reporter
func (r *TAP) SkipAll(reason string) {
	r.counts.Skipped = true
	r.counts.HasPlan = true
	r.printf("1..0 # SKIP %s\n", reason)
}

// Abort implements Reporter
func (r *TAP) Abort(error) {
	r.counts.Aborted = true
}

// Pass implements Reporter
func (r *TAP) Pass(name string) {
	r.counts.Passed++
	r.printf("ok %d - %s\n", r.counts.Run(), name)
}

// Fail implements Reporter
func (r *TAP) Fail(name string, diagnostics []string) {
	r.counts.Failed++
	r.printf("not ok %d - %s\n", r.counts.Run(), name)
	r.printf("#   Failed test %s\n", name)
	for _, text := range diagnostics {
		r.diag(text)
	}
}

// Done implements Reporter
func (r *TAP) Done() error {
	if r.counts.Skipped || r.counts.Aborted {
		return nil
	}
	if !r.counts.HasPlan {
		r.printf("1..%d\n", r.counts.Run())
	} else if r.counts.Planned != r.counts.Run() {
		r.diag(fmt.Sprintf("Looks like you planned %d tests but ran %d.", r.counts.Planned, r.counts.Run()))
		return fmt.Errorf("%w: planned %d, ran %d", prerrors.ErrPlanMismatch, r.counts.Planned, r.counts.Run())
	}
	if r.counts.Failed > 0 {
		r.diag(fmt.Sprintf("Looks like you failed %d test of %d.", r.counts.Failed, r.counts.Run()))
		return fmt.Errorf("%w: %d of %d", prerrors.ErrChecksFailed, r.counts.Failed, r.counts.Run())
	}
	return nil
}

// diag writes text as TAP comment lines
func (r *TAP) diag(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			r.printf("#\n")
			continue
		}
		r.printf("# %s\n", line)
	}
}

func (r *TAP) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
