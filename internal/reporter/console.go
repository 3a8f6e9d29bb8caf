package reporter

import (
	"fmt"
	"time"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/output"
)

// Console prints colored, human-oriented results
type Console struct {
	formatter *output.Formatter
	quiet     bool
	start     time.Time
	counts    Counts
	failed    []string
}

// NewConsole creates a console reporter; quiet hides passing files
func NewConsole(formatter *output.Formatter, quiet bool) *Console {
	if formatter == nil {
		formatter = output.NewDefault()
	}
	return &Console{
		formatter: formatter,
		quiet:     quiet,
		start:     time.Now(),
	}
}

// Counts returns the counts seen so far
func (r *Console) Counts() Counts {
	return r.counts
}

// Plan implements Reporter
func (r *Console) Plan(count int) {
	r.counts.Planned = count
	r.counts.HasPlan = true
	if !r.quiet {
		r.formatter.Info("Checking %d file(s) with perltidy", count)
	}
}

// SkipAll implements Reporter
func (r *Console) SkipAll(reason string) {
	r.counts.Skipped = true
	r.formatter.Warning("Skipped: %s", reason)
}

// Abort implements Reporter. The caller reports the error itself.
func (r *Console) Abort(error) {
	r.counts.Aborted = true
}

// Pass implements Reporter
func (r *Console) Pass(name string) {
	r.counts.Passed++
	if !r.quiet {
		r.formatter.Success("%s", name)
	}
}

// Fail implements Reporter
func (r *Console) Fail(name string, diagnostics []string) {
	r.counts.Failed++
	r.failed = append(r.failed, name)
	r.formatter.Error("%s", name)
	for _, text := range diagnostics {
		r.formatter.CodeBlock(text)
	}
}

// Done implements Reporter
func (r *Console) Done() error {
	if r.counts.Skipped || r.counts.Aborted {
		return nil
	}

	r.formatter.Header("Summary")
	stats := r.formatter.FormatExecutionStats(r.counts.Passed, r.counts.Failed, time.Since(r.start))

	if r.counts.HasPlan && r.counts.Planned != r.counts.Run() {
		r.formatter.Error("%s", stats)
		return fmt.Errorf("%w: planned %d, ran %d", prerrors.ErrPlanMismatch, r.counts.Planned, r.counts.Run())
	}

	if r.counts.Failed > 0 {
		r.formatter.Error("%s", stats)
		r.formatter.Detail("Not tidy: %s", r.formatter.FormatFileList(r.failed, 5))
		r.formatter.SuggestAction("Run perltidy on the files above and commit the result")
		return fmt.Errorf("%w: %d of %d", prerrors.ErrChecksFailed, r.counts.Failed, r.counts.Run())
	}

	r.formatter.Success("%s", stats)
	return nil
}
