// Package errors defines common errors for the tidy check system
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrChecksFailed is returned when one or more files are not tidy
	ErrChecksFailed = errors.New("tidy checks failed")

	// ErrRootNotFound is returned when the directory to scan does not exist
	ErrRootNotFound = errors.New("root directory not found")

	// ErrRootNotDirectory is returned when the path to scan is not a directory
	ErrRootNotDirectory = errors.New("root path is not a directory")

	// ErrExcludeNotSequence is returned when exclude rules are not given as a list
	ErrExcludeNotSequence = errors.New("exclude rules must be a list")

	// ErrInvalidRule is returned when an exclude rule is neither a prefix nor a pattern
	ErrInvalidRule = errors.New("invalid exclude rule")

	// ErrToolNotFound is returned when the formatter binary is not available
	ErrToolNotFound = errors.New("required tool not found")

	// ErrToolExecutionFailed is returned when the formatter could not be run
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrConfigFileInvalid is returned when .tidycheck.yaml cannot be decoded
	ErrConfigFileInvalid = errors.New("invalid configuration file")

	// ErrFormatterMissing is returned when a run has files to check but no formatter
	ErrFormatterMissing = errors.New("no formatter configured")

	// ErrPlanMismatch is returned when the number of reported tests differs from the plan
	ErrPlanMismatch = errors.New("planned test count does not match tests run")
)

// CheckError represents an enhanced error with context and suggestions
type CheckError struct {
	// Base error
	Err error

	// Human-readable message explaining what went wrong
	Message string

	// Actionable suggestion for how to fix the issue
	Suggestion string

	// Command that failed (if applicable)
	Command string

	// Raw output from the failed command
	Output string

	// Files that were being processed
	Files []string

	// Whether the run may continue with the next file
	CanSkip bool
}

// Error implements the error interface
func (e *CheckError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the error unwrapping interface
func (e *CheckError) Unwrap() error {
	return e.Err
}

// Is implements the error checking interface
func (e *CheckError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewCheckError creates a new CheckError
func NewCheckError(err error, message, suggestion string) *CheckError {
	return &CheckError{
		Err:        err,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewToolNotFoundError creates an error for a missing formatter binary
func NewToolNotFoundError(tool, alternative string) *CheckError {
	return &CheckError{
		Err:        ErrToolNotFound,
		Command:    tool,
		Message:    fmt.Sprintf("%s not found", tool),
		Suggestion: alternative,
		CanSkip:    true,
	}
}

// NewToolExecutionError creates an error for formatter execution failures
func NewToolExecutionError(command, output, suggestion string) *CheckError {
	return &CheckError{
		Err:        ErrToolExecutionFailed,
		Command:    command,
		Output:     output,
		Message:    fmt.Sprintf("command '%s' failed", command),
		Suggestion: suggestion,
	}
}

// NewRootError creates a fatal error for an unusable root directory
func NewRootError(err error, root string) *CheckError {
	return &CheckError{
		Err:        err,
		Message:    fmt.Sprintf("%v: %s", err, root),
		Suggestion: "Pass an existing directory with --path or TIDY_CHECK_PATH.",
		Files:      []string{root},
	}
}

// NewRuleError creates a fatal error for malformed exclude rules
func NewRuleError(err error, detail string) *CheckError {
	return &CheckError{
		Err:        err,
		Message:    fmt.Sprintf("%v: %s", err, detail),
		Suggestion: "Exclude rules are a list of path prefixes or /regular expressions/.",
	}
}
