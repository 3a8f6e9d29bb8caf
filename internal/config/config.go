// Package config provides configuration loading for go-tidy-check
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
	"github.com/mrz1836/go-tidy-check/internal/logging"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
	"github.com/mrz1836/go-tidy-check/internal/runner"
)

const (
	// FileName is the optional YAML configuration file
	FileName = ".tidycheck.yaml"

	// EnvFileName is the optional dotenv file with TIDY_CHECK_* variables
	EnvFileName = ".tidycheck.env"

	// EnvPrefix prefixes every environment variable read by Load
	EnvPrefix = "TIDY_CHECK_"
)

// Output modes
const (
	OutputConsole = "console"
	OutputTAP     = "tap"
)

// Config holds the settings for one run
type Config struct {
	// Run settings
	Path    string       `yaml:"path"`     // TIDY_CHECK_PATH
	Exclude filter.Rules `yaml:"exclude"`  // TIDY_CHECK_EXCLUDE (nil = default rules)
	Profile string       `yaml:"profile"`  // TIDY_CHECK_PROFILE
	Mute    bool         `yaml:"mute"`     // TIDY_CHECK_MUTE
	SkipAll bool         `yaml:"skip_all"` // TIDY_CHECK_SKIP_ALL
	NoPlan  bool         `yaml:"no_plan"`  // TIDY_CHECK_NO_PLAN

	// Formatter settings
	Formatter      string `yaml:"formatter"`       // TIDY_CHECK_FORMATTER
	TimeoutSeconds int    `yaml:"timeout_seconds"` // TIDY_CHECK_TIMEOUT_SECONDS

	// Output settings
	LogLevel    string `yaml:"log_level"`    // TIDY_CHECK_LOG_LEVEL
	Output      string `yaml:"output"`       // TIDY_CHECK_OUTPUT
	ColorOutput bool   `yaml:"color_output"` // TIDY_CHECK_COLOR_OUTPUT

	// Sources that were loaded (derived)
	ConfigFile string `yaml:"-"`
	EnvFile    string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Path:           runner.DefaultRoot,
		Formatter:      perltidy.DefaultCommand,
		TimeoutSeconds: int(perltidy.DefaultTimeout / time.Second),
		LogLevel:       logging.DefaultLevel,
		Output:         OutputConsole,
		ColorOutput:    true,
	}
}

// Load builds the configuration for the current working directory
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom builds the configuration starting at dir. Layers, lowest first:
// defaults, .tidycheck.yaml, then TIDY_CHECK_* variables. A .tidycheck.env
// found walking up from dir is loaded first without overriding variables
// that are already set.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	if envPath, ok := findUp(dir, EnvFileName); ok {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		cfg.EnvFile = envPath
	}

	if configPath, ok := findUp(dir, FileName); ok {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a YAML file over the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is found by walking up from the working directory
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %w", prerrors.ErrConfigFileInvalid, path, err)
	}
	c.ConfigFile = path
	return nil
}

// applyEnv overrides values with any TIDY_CHECK_* variables that are set
func (c *Config) applyEnv() error {
	c.Path = getStringEnv(EnvPrefix+"PATH", c.Path)
	c.Profile = getStringEnv(EnvPrefix+"PROFILE", c.Profile)
	c.Mute = getBoolEnv(EnvPrefix+"MUTE", c.Mute)
	c.SkipAll = getBoolEnv(EnvPrefix+"SKIP_ALL", c.SkipAll)
	c.NoPlan = getBoolEnv(EnvPrefix+"NO_PLAN", c.NoPlan)
	c.Formatter = getStringEnv(EnvPrefix+"FORMATTER", c.Formatter)
	c.TimeoutSeconds = getIntEnv(EnvPrefix+"TIMEOUT_SECONDS", c.TimeoutSeconds)
	c.LogLevel = getStringEnv(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.Output = getStringEnv(EnvPrefix+"OUTPUT", c.Output)
	c.ColorOutput = getBoolEnv(EnvPrefix+"COLOR_OUTPUT", c.ColorOutput)

	// An empty TIDY_CHECK_EXCLUDE means exclude nothing, unset keeps the current rules
	if value, ok := os.LookupEnv(EnvPrefix + "EXCLUDE"); ok {
		items, err := filter.SplitList(value)
		if err != nil {
			return fmt.Errorf("invalid %sEXCLUDE: %w", EnvPrefix, err)
		}
		rules, err := filter.ParseRules(items)
		if err != nil {
			return fmt.Errorf("invalid %sEXCLUDE: %w", EnvPrefix, err)
		}
		c.Exclude = rules
	}
	return nil
}

// Validate validates the configuration and provides helpful error messages
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Path) == "" {
		errs = append(errs, "TIDY_CHECK_PATH must not be empty")
	}

	if strings.TrimSpace(c.Formatter) == "" {
		errs = append(errs, "TIDY_CHECK_FORMATTER must not be empty")
	}

	if c.TimeoutSeconds <= 0 {
		errs = append(errs, "TIDY_CHECK_TIMEOUT_SECONDS must be greater than 0")
	}

	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, "TIDY_CHECK_LOG_LEVEL must be one of: debug, info, warn, error")
	}

	switch strings.ToLower(c.Output) {
	case OutputConsole, OutputTAP:
	default:
		errs = append(errs, "TIDY_CHECK_OUTPUT must be one of: console, tap")
	}

	if c.Exclude != nil {
		if err := filter.Validate(c.Exclude); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if c.Profile != "" {
		if _, err := os.Stat(c.Profile); errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Sprintf("perltidy profile does not exist: %s", c.Profile))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Errors: errs,
		}
	}

	return nil
}

// Timeout returns the per-file formatter timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RunOptions converts the configuration to runner options
func (c *Config) RunOptions() runner.Options {
	return runner.Options{
		Root:    c.Path,
		Exclude: c.Exclude,
		Profile: c.Profile,
		Mute:    c.Mute,
		SkipAll: c.SkipAll,
		NoPlan:  c.NoPlan,
	}
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	Errors []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// GetConfigHelp returns helpful information about configuration options
func GetConfigHelp() string {
	return `go-tidy-check Configuration Help

Settings are layered, lowest first: built-in defaults, .tidycheck.yaml,
environment variables (optionally from .tidycheck.env), then command flags.

Environment Variables:

Run Settings:
  TIDY_CHECK_PATH=.                      Root directory to search
  TIDY_CHECK_EXCLUDE="/^blib/"           Comma separated exclude rules; /expr/ is a
                                         regular expression, anything else a path prefix.
                                         Commas inside /expr/ belong to the expression
                                         (/^gen{1,2}/ is one rule); an unclosed /expr
                                         is an error. Empty means exclude nothing.
  TIDY_CHECK_PROFILE=                    perltidy profile (default: perltidy's own lookup)
  TIDY_CHECK_MUTE=false                  Suppress failure diagnostics
  TIDY_CHECK_SKIP_ALL=false              Skip every check
  TIDY_CHECK_NO_PLAN=false               Do not announce the test count up front

Formatter Settings:
  TIDY_CHECK_FORMATTER=perltidy          Formatter command
  TIDY_CHECK_TIMEOUT_SECONDS=30          Timeout per file in seconds

Output Settings:
  TIDY_CHECK_LOG_LEVEL=info              Log level (debug, info, warn, error)
  TIDY_CHECK_OUTPUT=console              Result format (console, tap)
  TIDY_CHECK_COLOR_OUTPUT=true           Enable colored output

Example .tidycheck.yaml:
  exclude:
    - /^blib/
    - inc/
    - pattern: "\\.generated\\.pm$"
  profile: .perltidyrc
  timeout_seconds: 60
  output: tap
`
}

// findUp looks for name in dir and each of its parents
func findUp(dir, name string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(current, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// Helper functions for environment variable parsing
func getBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}

func getIntEnv(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func getStringEnv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}
