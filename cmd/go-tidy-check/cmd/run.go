package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/go-tidy-check/internal/config"
	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
	"github.com/mrz1836/go-tidy-check/internal/logging"
	"github.com/mrz1836/go-tidy-check/internal/output"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
	"github.com/mrz1836/go-tidy-check/internal/reporter"
	"github.com/mrz1836/go-tidy-check/internal/runner"
)

// discoveryFlags are shared by every command that walks the tree
type discoveryFlags struct {
	path    string
	exclude []string
}

func (f *discoveryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "path", runner.DefaultRoot, "Root directory to search")
	cmd.Flags().StringArrayVarP(&f.exclude, "exclude", "e", nil,
		`Exclude rules, repeatable or comma separated; /expr/ is a regular expression, anything else a path prefix (--exclude="" excludes nothing)`)
}

// apply overlays the flags the user set on cfg
func (f *discoveryFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("path") {
		cfg.Path = f.path
	}
	if cmd.Flags().Changed("exclude") {
		var items []string
		for _, value := range f.exclude {
			split, err := filter.SplitList(value)
			if err != nil {
				return err
			}
			items = append(items, split...)
		}
		rules, err := filter.ParseRules(items)
		if err != nil {
			return err
		}
		cfg.Exclude = rules
	}
	return nil
}

// runFlags holds the flags of the run command
type runFlags struct {
	discoveryFlags

	profile   string
	mute      bool
	skipAll   bool
	noPlan    bool
	formatter string
	timeout   int
	output    string
	logLevel  string
	quiet     bool
}

// BuildRunCmd creates the run command
func (cb *CommandBuilder) BuildRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check that every Perl source is tidy",
		Long: `Run perltidy over every Perl source under the root directory and report
one test per file. A file passes when perltidy would leave it unchanged,
ignoring trailing line endings.

Files under blib/ are excluded unless --exclude is given.`,
		Example: `  # Check the current directory
  go-tidy-check run

  # Emit TAP for a test harness
  go-tidy-check run --output tap

  # Use a project profile and exclude bundled modules
  go-tidy-check run --profile .perltidyrc --exclude inc/ --exclude '/\.generated\.pm$/'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cb.runChecks(cmd, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.profile, "profile", "", "perltidy profile (default: perltidy's own lookup)")
	cmd.Flags().BoolVar(&flags.mute, "mute", false, "Suppress failure diagnostics")
	cmd.Flags().BoolVar(&flags.skipAll, "skip-all", false, "Skip every check")
	cmd.Flags().BoolVar(&flags.noPlan, "no-plan", false, "Do not announce the test count up front")
	cmd.Flags().StringVar(&flags.formatter, "formatter", perltidy.DefaultCommand, "Formatter command")
	cmd.Flags().IntVar(&flags.timeout, "timeout", int(perltidy.DefaultTimeout.Seconds()), "Timeout per file in seconds")
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.OutputConsole, "Result format: console, tap")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", logging.DefaultLevel, "Log level: debug, info, warn, error")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only show failures and the summary")

	return cmd
}

// loadRunConfig layers the run flags over the loaded configuration
func loadRunConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("profile") {
		cfg.Profile = flags.profile
	}
	if changed("mute") {
		cfg.Mute = flags.mute
	}
	if changed("skip-all") {
		cfg.SkipAll = flags.skipAll
	}
	if changed("no-plan") {
		cfg.NoPlan = flags.noPlan
	}
	if changed("formatter") {
		cfg.Formatter = flags.formatter
	}
	if changed("timeout") {
		cfg.TimeoutSeconds = flags.timeout
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cb *CommandBuilder) runChecks(cmd *cobra.Command, flags *runFlags) error {
	// Errors and their suggestions stay off stdout, which carries the result stream
	formatter := output.New(output.Options{
		ColorEnabled: output.ShouldUseColor(cb.app.colorMode()),
		Out:          cmd.ErrOrStderr(),
		Err:          cmd.ErrOrStderr(),
	})

	cfg, err := loadRunConfig(cmd, flags)
	if err != nil {
		formatter.Error("Failed to load configuration: %v", err)
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := cb.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("configuration loaded",
		zap.String("config_file", cfg.ConfigFile),
		zap.String("env_file", cfg.EnvFile),
		zap.String("path", cfg.Path),
		zap.String("output", cfg.Output),
	)

	var tidier perltidy.Formatter
	if !cfg.SkipAll {
		tidier, err = cb.app.newFormatter(cfg)
		if err != nil {
			reportToolError(formatter, err)
			return err
		}
	}

	rep := cb.newReporter(cmd, cfg, flags.quiet)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = runner.New(tidier, logger).Run(ctx, cfg.RunOptions(), rep)
	if err != nil && !errors.Is(err, prerrors.ErrChecksFailed) && !errors.Is(err, prerrors.ErrPlanMismatch) {
		reportToolError(formatter, err)
	}
	return err
}

// newLogger builds the debug logger; --verbose forces debug level
func (cb *CommandBuilder) newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if cb.app.config.Verbose {
		level = "debug"
	}
	return logging.New(level, logging.FormatConsole)
}

// newReporter picks the reporter for the configured output format
func (cb *CommandBuilder) newReporter(cmd *cobra.Command, cfg *config.Config, quiet bool) reporter.Reporter {
	if strings.EqualFold(cfg.Output, config.OutputTAP) {
		return reporter.NewTAP(cmd.OutOrStdout())
	}
	return reporter.NewConsole(output.New(output.Options{
		ColorEnabled: cfg.ColorOutput && output.ShouldUseColor(cb.app.colorMode()),
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
	}), quiet)
}

// reportToolError prints err with its suggestion when it carries one
func reportToolError(formatter *output.Formatter, err error) {
	formatter.Error("%v", err)
	var checkErr *prerrors.CheckError
	if errors.As(err, &checkErr) && checkErr.Suggestion != "" {
		formatter.SuggestAction(checkErr.Suggestion)
	}
}
