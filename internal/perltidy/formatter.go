// Package perltidy runs the external formatter that defines what tidy means
package perltidy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
)

// DefaultCommand is the formatter binary used when none is configured
const DefaultCommand = "perltidy"

// DefaultTimeout bounds a single formatter invocation
const DefaultTimeout = 30 * time.Second

// Result is the formatter output for one source text
type Result struct {
	// Output is the reformatted text
	Output string

	// Errors is the engine error stream, empty on success
	Errors string
}

// Formatter reformats source text, optionally using a style profile
type Formatter interface {
	// Name returns the formatter name used in diagnostics
	Name() string

	// Format returns the reformatted source and any engine error output
	Format(ctx context.Context, source, profile string) (Result, error)
}

// Func adapts an in-process function to the Formatter interface
type Func func(ctx context.Context, source, profile string) (Result, error)

// Name returns the name of the function formatter
func (f Func) Name() string {
	return "formatter"
}

// Format calls f
func (f Func) Format(ctx context.Context, source, profile string) (Result, error) {
	return f(ctx, source, profile)
}

// CommandFormatter runs perltidy (or a compatible command) as a subprocess
type CommandFormatter struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandFormatter creates a formatter for perltidy with the default timeout
func NewCommandFormatter() *CommandFormatter {
	return &CommandFormatter{
		command: DefaultCommand,
		timeout: DefaultTimeout,
	}
}

// NewCommandFormatterWithConfig creates a formatter for a custom command and timeout
func NewCommandFormatterWithConfig(command string, timeout time.Duration, args ...string) *CommandFormatter {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandFormatter{
		command: command,
		args:    args,
		timeout: timeout,
	}
}

// Name returns the command name
func (c *CommandFormatter) Name() string {
	return c.command
}

// Args builds the argument list for one invocation
func (c *CommandFormatter) Args(profile string) []string {
	args := []string{"-st", "-se"}
	if profile != "" {
		args = append(args, "-pro="+profile)
	}
	return append(args, c.args...)
}

// Format pipes source through the command. Anything written to stderr is
// returned as Result.Errors; only failures to run the command are errors.
func (c *CommandFormatter) Format(ctx context.Context, source, profile string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, c.Args(profile)...) //nolint:gosec // Command is configured by the user
	cmd.Stdin = strings.NewReader(source)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Output: stdout.String(), Errors: stderr.String()}
	if err == nil {
		return result, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, prerrors.NewToolExecutionError(
			c.command,
			result.Errors,
			fmt.Sprintf("%s timed out after %v. Increase TIDY_CHECK_TIMEOUT_SECONDS.", c.command, c.timeout),
		)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return result, prerrors.NewToolNotFoundError(c.command, installHint(c.command))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && strings.TrimSpace(result.Errors) != "" {
		// The engine explained itself on stderr
		return result, nil
	}

	return result, prerrors.NewToolExecutionError(
		c.command,
		result.Errors,
		fmt.Sprintf("Run '%s %s < file' manually to see detailed error output.", c.command, strings.Join(c.Args(profile), " ")),
	)
}

// EnsureAvailable checks that command can be found on PATH
func EnsureAvailable(command string) error {
	if command == "" {
		command = DefaultCommand
	}
	if _, err := exec.LookPath(command); err != nil {
		return prerrors.NewToolNotFoundError(command, installHint(command))
	}
	return nil
}

func installHint(command string) string {
	if command == DefaultCommand {
		return "Install Perl::Tidy with 'cpanm Perl::Tidy' or your system package manager."
	}
	return fmt.Sprintf("Install %s or set TIDY_CHECK_FORMATTER to a perltidy-compatible command.", command)
}
