// Package output provides utilities for formatting user-facing output and messages
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Formatter handles all human-readable output for tidy checks
type Formatter struct {
	colorEnabled bool
	out          io.Writer
	err          io.Writer
}

// Options for configuring the formatter
type Options struct {
	ColorEnabled bool
	Out          io.Writer
	Err          io.Writer
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	f := &Formatter{
		colorEnabled: opts.ColorEnabled,
		out:          opts.Out,
		err:          opts.Err,
	}

	if f.out == nil {
		f.out = os.Stdout
	}
	if f.err == nil {
		f.err = os.Stderr
	}

	return f
}

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables color on an interactive terminal outside CI
	ColorAuto ColorMode = iota
	// ColorAlways always enables color output
	ColorAlways
	// ColorNever never enables color output
	ColorNever
)

// ParseColorMode maps the --color flag value to a ColorMode
func ParseColorMode(value string) ColorMode {
	switch strings.ToLower(value) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// NewDefault creates a formatter with default settings, respecting environment variables
func NewDefault() *Formatter {
	return New(Options{
		ColorEnabled: ShouldUseColor(ColorAuto),
		Out:          os.Stdout,
		Err:          os.Stderr,
	})
}

// ShouldUseColor determines if color output should be enabled based on the mode
func ShouldUseColor(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if os.Getenv("TIDY_CHECK_COLOR_OUTPUT") == "false" {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		if isCI() {
			return false
		}
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	default:
		return false
	}
}

// isCI detects if we're running in a CI environment
func isCI() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"CIRCLECI",
		"TRAVIS",
		"BUILDKITE",
		"TF_BUILD", // Azure DevOps
	}

	for _, envVar := range ciEnvVars {
		if value := os.Getenv(envVar); value == "true" || value == "1" || (envVar != "CI" && value != "") {
			return true
		}
	}

	return false
}

// ColorEnabled reports whether output is colored
func (f *Formatter) ColorEnabled() bool {
	return f.colorEnabled
}

// Success prints a success message with green checkmark
func (f *Formatter) Success(format string, args ...interface{}) {
	f.print(f.out, color.FgGreen, "✓ ", format, args...)
}

// Error prints an error message with red X
func (f *Formatter) Error(format string, args ...interface{}) {
	f.print(f.err, color.FgRed, "✗ ", format, args...)
}

// Warning prints a warning message with yellow warning symbol
func (f *Formatter) Warning(format string, args ...interface{}) {
	f.print(f.err, color.FgYellow, "⚠ ", format, args...)
}

// Info prints an info message with blue info symbol
func (f *Formatter) Info(format string, args ...interface{}) {
	f.print(f.out, color.FgBlue, "ℹ ", format, args...)
}

func (f *Formatter) print(w io.Writer, attr color.Attribute, symbol, format string, args ...interface{}) {
	if f.colorEnabled {
		c := color.New(attr)
		c.EnableColor()
		_, _ = c.Fprintf(w, symbol+format+"\n", args...)
		return
	}
	_, _ = fmt.Fprintf(w, symbol+format+"\n", args...)
}

// Header prints a section header
func (f *Formatter) Header(text string) {
	if f.colorEnabled {
		c := color.New(color.FgCyan, color.Bold)
		c.EnableColor()
		_, _ = c.Fprintf(f.out, "\n%s\n%s\n", text, strings.Repeat("─", len(text)))
		return
	}
	_, _ = fmt.Fprintf(f.out, "\n%s\n%s\n", text, strings.Repeat("─", len(text)))
}

// Detail prints detailed information with indentation
func (f *Formatter) Detail(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(f.out, "  "+format+"\n", args...)
}

// CodeBlock prints text indented, dimmed when color is enabled
func (f *Formatter) CodeBlock(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if f.colorEnabled {
			c := color.New(color.Faint)
			c.EnableColor()
			_, _ = c.Fprintf(f.out, "    %s\n", line)
		} else {
			_, _ = fmt.Fprintf(f.out, "    %s\n", line)
		}
	}
}

// SuggestAction prints an actionable suggestion
func (f *Formatter) SuggestAction(action string) {
	f.print(f.out, color.FgMagenta, "💡 ", "%s", action)
}

// Duration formats a duration for display
func (f *Formatter) Duration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dμs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// FormatFileList formats a list of files for display
func (f *Formatter) FormatFileList(files []string, maxFiles int) string {
	if len(files) == 0 {
		return "no files"
	}

	if len(files) <= maxFiles {
		return strings.Join(files, ", ")
	}

	shown := strings.Join(files[:maxFiles], ", ")
	return fmt.Sprintf("%s ... and %d more", shown, len(files)-maxFiles)
}

// FormatExecutionStats formats the pass/fail summary of a run
func (f *Formatter) FormatExecutionStats(passed, failed int, duration time.Duration) string {
	stats := []string{}

	if passed > 0 {
		stats = append(stats, f.colorize(color.FgGreen, fmt.Sprintf("%d tidy", passed)))
	}
	if failed > 0 {
		stats = append(stats, f.colorize(color.FgRed, fmt.Sprintf("%d failed", failed)))
	}
	if len(stats) == 0 {
		stats = append(stats, "no files checked")
	}

	return fmt.Sprintf("%s in %s", strings.Join(stats, ", "), f.Duration(duration))
}

func (f *Formatter) colorize(attr color.Attribute, text string) string {
	if !f.colorEnabled {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}
