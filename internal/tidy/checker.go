// Package tidy decides whether a single file is already in canonical perltidy form
package tidy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mrz1836/go-tidy-check/internal/diff"
	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
)

// Kind tags the outcome of checking one file
type Kind int

const (
	// KindTidy means the file matches its reformatted text
	KindTidy Kind = iota
	// KindNotTidy means the formatter would change the file
	KindNotTidy
	// KindLoadError means the file could not be read
	KindLoadError
	// KindEngineError means the formatter itself failed on the input
	KindEngineError
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindTidy:
		return "tidy"
	case KindNotTidy:
		return "not tidy"
	case KindLoadError:
		return "load error"
	case KindEngineError:
		return "engine error"
	default:
		return "unknown"
	}
}

// Outcome is the result of checking one file
type Outcome struct {
	Kind Kind

	// File is the path that was checked
	File string

	// Formatter names the engine for engine error diagnostics
	Formatter string

	// Detail is the rendered diff (NotTidy) or the error text (LoadError, EngineError)
	Detail string
}

// Passed reports whether the outcome is a pass
func (o Outcome) Passed() bool {
	return o.Kind == KindTidy
}

// Diagnostics returns the diagnostic messages for a failing outcome
func (o Outcome) Diagnostics() []string {
	switch o.Kind {
	case KindLoadError:
		return []string{fmt.Sprintf("unable to find or read '%s'", o.File)}
	case KindEngineError:
		return []string{fmt.Sprintf("%s reported the following errors:", o.Formatter), o.Detail}
	case KindNotTidy:
		return []string{fmt.Sprintf("the file '%s' is not tidy", o.File), o.Detail}
	default:
		return nil
	}
}

// Sink receives diagnostic text
type Sink func(text string)

// Options configures a Checker
type Options struct {
	// Profile is the style configuration passed to the formatter; empty lets it discover one
	Profile string

	// Mute suppresses diagnostics without changing the verdict
	Mute bool

	// Sink receives diagnostics; nil writes to stderr
	Sink Sink

	// Renderer produces the diff shown for untidy files; nil uses diff.Table
	Renderer diff.Renderer
}

// Checker compares files against their reformatted text
type Checker struct {
	formatter perltidy.Formatter
	opts      Options
}

// NewChecker creates a checker using the given formatter
func NewChecker(formatter perltidy.Formatter, opts Options) *Checker {
	if opts.Renderer == nil {
		opts.Renderer = diff.NewTableRenderer()
	}
	if opts.Sink == nil {
		opts.Sink = StderrSink
	}
	return &Checker{
		formatter: formatter,
		opts:      opts,
	}
}

// StderrSink writes each diagnostic to stderr
func StderrSink(text string) {
	_, _ = fmt.Fprintln(os.Stderr, text)
}

// Check loads, reformats and compares file, emitting diagnostics on failure
func (c *Checker) Check(ctx context.Context, file string) Outcome {
	outcome := c.evaluate(ctx, file)
	if !c.opts.Mute {
		for _, text := range outcome.Diagnostics() {
			c.opts.Sink(text)
		}
	}
	return outcome
}

// IsTidy reports whether file is tidy
func (c *Checker) IsTidy(ctx context.Context, file string) bool {
	return c.Check(ctx, file).Passed()
}

func (c *Checker) evaluate(ctx context.Context, file string) Outcome {
	outcome := Outcome{File: file, Formatter: c.formatter.Name()}

	source, err := load(file)
	if err != nil {
		outcome.Kind = KindLoadError
		outcome.Detail = err.Error()
		return outcome
	}

	result, err := c.formatter.Format(ctx, source, c.opts.Profile)
	if err != nil {
		outcome.Kind = KindEngineError
		outcome.Detail = errorText(result.Errors, err)
		return outcome
	}
	if result.Errors != "" {
		outcome.Kind = KindEngineError
		outcome.Detail = result.Errors
		return outcome
	}

	original := TrimLineEndings(source)
	tidied := TrimLineEndings(result.Output)
	if original == tidied {
		outcome.Kind = KindTidy
		return outcome
	}

	outcome.Kind = KindNotTidy
	outcome.Detail = c.opts.Renderer.Render(original, tidied)
	return outcome
}

// TrimLineEndings strips the run of trailing carriage returns and line feeds
func TrimLineEndings(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// load reads file as text; bytes that are not valid UTF-8 are passed through unchanged
func load(file string) (string, error) {
	data, err := os.ReadFile(file) //nolint:gosec // Path comes from discovery
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// errorText combines engine stderr with the invocation error and its suggestion
func errorText(stderr string, err error) string {
	text := err.Error()
	var checkErr *prerrors.CheckError
	if errors.As(err, &checkErr) && checkErr.Suggestion != "" {
		text += "\n" + checkErr.Suggestion
	}
	if stderr == "" {
		return text
	}
	return strings.TrimRight(stderr, "\n") + "\n" + text
}
