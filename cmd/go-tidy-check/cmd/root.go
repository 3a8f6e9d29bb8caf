// Package cmd implements the go-tidy-check command line
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrz1836/go-tidy-check/internal/config"
	"github.com/mrz1836/go-tidy-check/internal/output"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
)

// FormatterFactory creates the formatter used by a run
type FormatterFactory func(cfg *config.Config) (perltidy.Formatter, error)

// CLIApp holds the application state and configuration
type CLIApp struct {
	version      string
	commit       string
	buildDate    string
	config       *AppConfig
	newFormatter FormatterFactory
}

// AppConfig holds global application configuration
type AppConfig struct {
	Verbose   bool
	NoColor   bool
	ColorMode string // "auto", "always", "never"
}

// NewCLIApp creates a new CLI application instance
func NewCLIApp(version, commit, buildDate string) *CLIApp {
	return &CLIApp{
		version:      version,
		commit:       commit,
		buildDate:    buildDate,
		config:       &AppConfig{ColorMode: "auto"},
		newFormatter: commandFormatter,
	}
}

// SetFormatterFactory replaces how formatters are created
func (a *CLIApp) SetFormatterFactory(factory FormatterFactory) {
	a.newFormatter = factory
}

// colorMode resolves --no-color and --color into a single mode
func (a *CLIApp) colorMode() output.ColorMode {
	if a.config.NoColor {
		return output.ColorNever
	}
	return output.ParseColorMode(a.config.ColorMode)
}

// commandFormatter runs the configured perltidy binary, failing early when it is missing
func commandFormatter(cfg *config.Config) (perltidy.Formatter, error) {
	if err := perltidy.EnsureAvailable(cfg.Formatter); err != nil {
		return nil, err
	}
	return perltidy.NewCommandFormatterWithConfig(cfg.Formatter, cfg.Timeout()), nil
}

// CommandBuilder creates cobra commands with dependency injection
type CommandBuilder struct {
	app *CLIApp
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder(app *CLIApp) *CommandBuilder {
	return &CommandBuilder{app: app}
}

// BuildRootCmd creates the root command
func (cb *CommandBuilder) BuildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go-tidy-check",
		Short: "Check that Perl sources are formatted the way perltidy formats them",
		Long: `go-tidy-check finds Perl sources (.pl, .pm, .PL, .t) under a directory,
runs each one through perltidy and fails every file whose tidied text
differs from what is on disk.

Results are reported one test per file, either as colored console output
or as TAP for test harnesses. Configuration comes from .tidycheck.yaml,
TIDY_CHECK_* environment variables (optionally in .tidycheck.env) and flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cb.app.config.Verbose, _ = cmd.Flags().GetBool("verbose")
			cb.app.config.NoColor, _ = cmd.Flags().GetBool("no-color")
			cb.app.config.ColorMode, _ = cmd.Flags().GetString("color")
			cb.initConfig()
		},
	}

	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", cb.app.version, cb.app.commit, cb.app.buildDate)
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (same as --color=never)")
	cmd.PersistentFlags().String("color", "auto", "Control color output: auto, always, never")

	return cmd
}

// BuildCommandTree creates the root command with every subcommand attached
func (cb *CommandBuilder) BuildCommandTree() *cobra.Command {
	rootCmd := cb.BuildRootCmd()
	rootCmd.AddCommand(cb.BuildRunCmd())
	rootCmd.AddCommand(cb.BuildListCmd())
	rootCmd.AddCommand(cb.BuildConfigCmd())
	return rootCmd
}

// ExecuteArgs runs the command tree with args
func (cb *CommandBuilder) ExecuteArgs(args []string) error {
	rootCmd := cb.BuildCommandTree()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// initConfig applies the global color flags
func (cb *CommandBuilder) initConfig() {
	switch cb.app.colorMode() {
	case output.ColorNever:
		color.NoColor = true
	case output.ColorAlways:
		color.NoColor = false
	default:
		color.NoColor = os.Getenv("NO_COLOR") != ""
	}
}

// BuildConfigCmd creates the config command that prints configuration help
func (cb *CommandBuilder) BuildConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.GetConfigHelp())
			return err
		},
	}
}
