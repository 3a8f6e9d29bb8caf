// Package main provides the entry point for go-tidy-check
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrz1836/go-tidy-check/cmd/go-tidy-check/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the exit code
func run(args []string) int {
	buildInfo := NewBuildInfo()

	version := buildInfo.Version()
	if buildInfo.IsModified() && !strings.HasSuffix(version, "-dirty") {
		version += "-dirty"
	}

	app := cmd.NewCLIApp(version, buildInfo.Commit(), buildInfo.BuildDate())
	builder := cmd.NewCommandBuilder(app)

	if err := builder.ExecuteArgs(args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
