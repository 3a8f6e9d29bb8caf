// Package tidycheck verifies from Go tests that Perl sources are formatted
// the way perltidy formats them.
//
// A typical test checks the whole tree with the default exclusions:
//
//	func TestPerlTidy(t *testing.T) {
//		tidycheck.Test(t, tidycheck.Options{Profile: ".perltidyrc"})
//	}
package tidycheck

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/mrz1836/go-tidy-check/internal/diff"
	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
	"github.com/mrz1836/go-tidy-check/internal/reporter"
	"github.com/mrz1836/go-tidy-check/internal/runner"
	"github.com/mrz1836/go-tidy-check/internal/tidy"
)

// Rule excludes matching paths from a run
type Rule = filter.Rule

// Formatter reformats source text
type Formatter = perltidy.Formatter

// FormatterFunc adapts a function to Formatter
type FormatterFunc = perltidy.Func

// Result is what a Formatter returns for one source
type Result = perltidy.Result

// Renderer produces the diff shown for a file that is not tidy
type Renderer = diff.Renderer

// RendererFunc adapts a function to Renderer
type RendererFunc = diff.RendererFunc

// ErrChecksFailed is returned when at least one file is not tidy
var ErrChecksFailed = prerrors.ErrChecksFailed //nolint:gochecknoglobals // Re-exported sentinel

// Prefix returns a rule excluding paths that start with s
func Prefix(s string) Rule {
	return filter.Prefix(s)
}

// Pattern returns a rule excluding paths matched anywhere by re
func Pattern(re *regexp.Regexp) Rule {
	return filter.Pattern(re)
}

// ParseRule parses "/expr/" as a pattern and anything else as a prefix
func ParseRule(s string) (Rule, error) {
	return filter.ParseRule(s)
}

// DefaultExclude returns the rules used when Options.Exclude is nil
func DefaultExclude() []Rule {
	return filter.DefaultRules()
}

// Options configures Test, IsTidy and ListFiles
type Options struct {
	// Path is the root directory; empty means the current directory
	Path string

	// Exclude lists exclusion rules; nil means DefaultExclude and an empty
	// non-nil slice excludes nothing
	Exclude []Rule

	// Profile is the perltidy profile; empty lets perltidy find its own
	Profile string

	// Mute suppresses failure diagnostics
	Mute bool

	// SkipAll skips the whole test
	SkipAll bool

	// NoPlan omits the upfront test count
	NoPlan bool

	// Formatter replaces the perltidy command
	Formatter Formatter

	// Timeout bounds each perltidy invocation; zero means 30 seconds
	Timeout time.Duration

	// Renderer replaces the side-by-side diff table in failure diagnostics
	Renderer Renderer
}

func (o Options) formatter() (Formatter, error) {
	if o.Formatter != nil {
		return o.Formatter, nil
	}
	if err := perltidy.EnsureAvailable(perltidy.DefaultCommand); err != nil {
		return nil, err
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = perltidy.DefaultTimeout
	}
	return perltidy.NewCommandFormatterWithConfig(perltidy.DefaultCommand, timeout), nil
}

func (o Options) runOptions() runner.Options {
	opts := runner.Options{
		Root:    o.Path,
		Profile: o.Profile,
		Mute:    o.Mute,
		SkipAll: o.SkipAll,
		NoPlan:  o.NoPlan,
	}
	if o.Exclude != nil {
		opts.Exclude = filter.Rules(o.Exclude)
	}
	return opts
}

// Test checks every Perl source under opts.Path and reports each file as
// a failure on t when it is not tidy. Configuration errors stop the test;
// a missing perltidy skips it.
func Test(t testing.TB, opts Options) {
	t.Helper()

	var formatter Formatter
	if !opts.SkipAll {
		var err error
		formatter, err = opts.formatter()
		if err != nil {
			var checkErr *prerrors.CheckError
			if errors.As(err, &checkErr) && checkErr.CanSkip {
				t.Skipf("%v: %s", err, checkErr.Suggestion)
				return
			}
			t.Fatalf("tidy check could not start: %v", err)
			return
		}
	}

	_, err := runner.New(formatter, nil).WithRenderer(opts.Renderer).Run(context.Background(), opts.runOptions(), reporter.NewTesting(t))
	if err != nil && !errors.Is(err, prerrors.ErrChecksFailed) {
		t.Fatalf("tidy check aborted: %v", err)
	}
}

// IsTidy reports whether file is tidy, writing diagnostics to stderr unless
// opts.Mute is set
func IsTidy(file string, opts Options) bool {
	formatter, err := opts.formatter()
	if err != nil {
		if !opts.Mute {
			tidy.StderrSink(err.Error())
		}
		return false
	}
	checker := tidy.NewChecker(formatter, tidy.Options{
		Profile:  opts.Profile,
		Mute:     opts.Mute,
		Renderer: opts.Renderer,
	})
	return checker.IsTidy(context.Background(), file)
}

// ListFiles returns the files Test would check, in order
func ListFiles(opts Options) ([]string, error) {
	return runner.New(nil, nil).List(opts.runOptions())
}
