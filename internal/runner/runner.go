// Package runner provides the tidy check execution engine
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrz1836/go-tidy-check/internal/diff"
	"github.com/mrz1836/go-tidy-check/internal/discover"
	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
	"github.com/mrz1836/go-tidy-check/internal/logging"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
	"github.com/mrz1836/go-tidy-check/internal/reporter"
	"github.com/mrz1836/go-tidy-check/internal/tidy"
)

// SkipAllReason is reported when a run is skipped entirely
const SkipAllReason = "All tests skipped."

// DefaultRoot is searched when Options.Root is empty
const DefaultRoot = "."

// Runner executes tidy checks over a directory tree
type Runner struct {
	formatter perltidy.Formatter
	renderer  diff.Renderer
	logger    *zap.Logger
}

// Options configures a check run
type Options struct {
	// Root is the directory to search; empty means the current directory
	Root string

	// Exclude lists the exclusion rules; nil applies filter.DefaultRules
	// and an empty non-nil list excludes nothing
	Exclude filter.Rules

	// Profile is passed to the formatter as its style configuration
	Profile string

	// Mute suppresses diagnostics
	Mute bool

	// SkipAll skips the whole run
	SkipAll bool

	// NoPlan omits the upfront test count
	NoPlan bool
}

// Results contains the results of a check run
type Results struct {
	Files         []string
	Outcomes      []tidy.Outcome
	Passed        int
	Failed        int
	Skipped       bool
	TotalDuration time.Duration
}

// New creates a Runner checking files with formatter. A nil logger discards logs.
func New(formatter perltidy.Formatter, logger *zap.Logger) *Runner {
	return &Runner{
		formatter: formatter,
		logger:    logging.OrNop(logger),
	}
}

// WithRenderer sets the diff renderer used for untidy files
func (r *Runner) WithRenderer(renderer diff.Renderer) *Runner {
	r.renderer = renderer
	return r
}

// ExcludeRules returns the effective exclusion rules
func (o Options) ExcludeRules() filter.Rules {
	if o.Exclude == nil {
		return filter.DefaultRules()
	}
	return o.Exclude
}

// RootDir returns the effective root directory
func (o Options) RootDir() string {
	if o.Root == "" {
		return DefaultRoot
	}
	return o.Root
}

// List validates the options and returns the files a run would check
func (r *Runner) List(opts Options) ([]string, error) {
	rules := opts.ExcludeRules()
	if err := filter.Validate(rules); err != nil {
		return nil, err
	}

	root := opts.RootDir()
	r.logger.Debug("discovering files",
		zap.String("root", root),
		zap.Strings("exclude", rules.Strings()),
	)

	files, err := discover.ListFiles(root, rules)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("discovered files", zap.Int("count", len(files)))
	return files, nil
}

// Run checks every discovered file and reports each one to rep.
// rep.Done is called on every return path; its error (ErrChecksFailed when
// any file failed) is returned with the results. Configuration errors and a
// missing formatter abort the run through rep.Abort before any file is
// checked and return nil results.
func (r *Runner) Run(ctx context.Context, opts Options, rep reporter.Reporter) (results *Results, err error) {
	start := time.Now()

	defer func() {
		if doneErr := rep.Done(); doneErr != nil && err == nil {
			err = doneErr
		}
		if results != nil {
			results.TotalDuration = time.Since(start)
		}
	}()

	if opts.SkipAll {
		r.logger.Info("skipping all checks")
		results = &Results{Skipped: true}
		rep.SkipAll(SkipAllReason)
		return results, nil
	}

	if r.formatter == nil {
		err = prerrors.NewCheckError(prerrors.ErrFormatterMissing, prerrors.ErrFormatterMissing.Error(),
			"Create the runner with a perltidy formatter.")
		return nil, r.abort(rep, err)
	}

	files, err := r.List(opts)
	if err != nil {
		return nil, r.abort(rep, err)
	}

	if !opts.NoPlan {
		rep.Plan(len(files))
	}

	results = &Results{
		Files:    files,
		Outcomes: make([]tidy.Outcome, 0, len(files)),
	}

	for _, file := range files {
		outcome, diagnostics := r.checkFile(ctx, file, opts)
		results.Outcomes = append(results.Outcomes, outcome)

		name := TestName(file)
		if outcome.Passed() {
			results.Passed++
			rep.Pass(name)
			continue
		}
		results.Failed++
		rep.Fail(name, diagnostics)
	}

	r.logger.Info("tidy checks finished",
		zap.Int("files", len(files)),
		zap.Int("passed", results.Passed),
		zap.Int("failed", results.Failed),
	)
	return results, nil
}

// abort reports a fatal error to rep and returns it
func (r *Runner) abort(rep reporter.Reporter, err error) error {
	r.logger.Error("run aborted", zap.Error(err))
	rep.Abort(err)
	return err
}

// checkFile runs the checker on one file, buffering its diagnostics
func (r *Runner) checkFile(ctx context.Context, file string, opts Options) (tidy.Outcome, []string) {
	var diagnostics []string
	checker := tidy.NewChecker(r.formatter, tidy.Options{
		Profile:  opts.Profile,
		Mute:     opts.Mute,
		Renderer: r.renderer,
		Sink: func(text string) {
			diagnostics = append(diagnostics, text)
		},
	})

	begin := time.Now()
	outcome := checker.Check(ctx, file)
	r.logger.Debug("checked file",
		zap.String("file", file),
		zap.Stringer("outcome", outcome.Kind),
		zap.Duration("duration", time.Since(begin)),
	)
	return outcome, diagnostics
}

// TestName is the reported name of the test for file
func TestName(file string) string {
	return fmt.Sprintf("'%s'", file)
}
