package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
)

var envKeys = []string{ //nolint:gochecknoglobals // Test fixture
	"TIDY_CHECK_PATH",
	"TIDY_CHECK_EXCLUDE",
	"TIDY_CHECK_PROFILE",
	"TIDY_CHECK_MUTE",
	"TIDY_CHECK_SKIP_ALL",
	"TIDY_CHECK_NO_PLAN",
	"TIDY_CHECK_FORMATTER",
	"TIDY_CHECK_TIMEOUT_SECONDS",
	"TIDY_CHECK_LOG_LEVEL",
	"TIDY_CHECK_OUTPUT",
	"TIDY_CHECK_COLOR_OUTPUT",
}

// unsetEnv removes every TIDY_CHECK_* variable for the duration of the test
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

type ConfigTestSuite struct {
	suite.Suite

	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	unsetEnv(s.T())
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o750))
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)

	s.Equal(".", cfg.Path)
	s.Nil(cfg.Exclude)
	s.Empty(cfg.Profile)
	s.False(cfg.Mute)
	s.False(cfg.SkipAll)
	s.False(cfg.NoPlan)
	s.Equal("perltidy", cfg.Formatter)
	s.Equal(30, cfg.TimeoutSeconds)
	s.Equal(30*time.Second, cfg.Timeout())
	s.Equal("info", cfg.LogLevel)
	s.Equal(OutputConsole, cfg.Output)
	s.True(cfg.ColorOutput)
	s.Empty(cfg.ConfigFile)
	s.Empty(cfg.EnvFile)
}

func (s *ConfigTestSuite) TestYAMLFile() {
	path := s.write(FileName, `
path: lib
exclude:
  - inc/
  - /\.generated\.pm$/
  - pattern: "^t/fixtures"
no_plan: true
timeout_seconds: 5
output: tap
`)

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)

	s.Equal(path, cfg.ConfigFile)
	s.Equal("lib", cfg.Path)
	s.Equal([]string{"inc/", `/\.generated\.pm$/`, "/^t/fixtures/"}, cfg.Exclude.Strings())
	s.True(cfg.NoPlan)
	s.Equal(5, cfg.TimeoutSeconds)
	s.Equal(OutputTAP, cfg.Output)
}

func (s *ConfigTestSuite) TestYAMLFileFoundInParent() {
	s.write(FileName, "mute: true\n")
	child := filepath.Join(s.dir, "lib", "Foo")
	s.Require().NoError(os.MkdirAll(child, 0o750))

	cfg, err := LoadFrom(child)
	s.Require().NoError(err)
	s.True(cfg.Mute)
}

func (s *ConfigTestSuite) TestYAMLEmptyExcludeListExcludesNothing() {
	s.write(FileName, "exclude: []\n")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.NotNil(cfg.Exclude)
	s.Empty(cfg.Exclude)
}

func (s *ConfigTestSuite) TestYAMLNullExcludeKeepsDefault() {
	s.write(FileName, "exclude:\n")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.Nil(cfg.Exclude)
}

func (s *ConfigTestSuite) TestYAMLScalarExcludeIsFatal() {
	s.write(FileName, "exclude: blib\n")

	cfg, err := LoadFrom(s.dir)
	s.Require().Error(err)
	s.Nil(cfg)
	s.Require().ErrorIs(err, prerrors.ErrExcludeNotSequence)
	s.Require().ErrorIs(err, prerrors.ErrConfigFileInvalid)
}

func (s *ConfigTestSuite) TestYAMLBadRuleIsFatal() {
	s.write(FileName, "exclude:\n  - /[/\n")

	_, err := LoadFrom(s.dir)
	s.Require().ErrorIs(err, prerrors.ErrInvalidRule)
}

func (s *ConfigTestSuite) TestEnvOverridesFile() {
	s.write(FileName, "output: tap\nmute: false\n")
	s.T().Setenv("TIDY_CHECK_OUTPUT", "console")
	s.T().Setenv("TIDY_CHECK_MUTE", "true")
	s.T().Setenv("TIDY_CHECK_TIMEOUT_SECONDS", "12")
	s.T().Setenv("TIDY_CHECK_EXCLUDE", "inc/, /^blib/ ,")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)

	s.Equal(OutputConsole, cfg.Output)
	s.True(cfg.Mute)
	s.Equal(12, cfg.TimeoutSeconds)
	s.Equal([]string{"inc/", "/^blib/"}, cfg.Exclude.Strings())
	s.Equal(filter.KindPattern, cfg.Exclude[1].Kind())
}

func (s *ConfigTestSuite) TestEmptyExcludeEnvExcludesNothing() {
	s.T().Setenv("TIDY_CHECK_EXCLUDE", "")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.NotNil(cfg.Exclude)
	s.Empty(cfg.Exclude)
}

func (s *ConfigTestSuite) TestInvalidExcludeEnv() {
	s.T().Setenv("TIDY_CHECK_EXCLUDE", "/(/")

	_, err := LoadFrom(s.dir)
	s.Require().ErrorIs(err, prerrors.ErrInvalidRule)
	s.Contains(err.Error(), "TIDY_CHECK_EXCLUDE")
}

func (s *ConfigTestSuite) TestExcludeEnvPatternWithComma() {
	s.T().Setenv("TIDY_CHECK_EXCLUDE", "/^gen{1,2}/,inc/")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.Equal([]string{"/^gen{1,2}/", "inc/"}, cfg.Exclude.Strings())
	s.Equal(filter.KindPattern, cfg.Exclude[0].Kind())
}

func (s *ConfigTestSuite) TestExcludeEnvUnterminatedPattern() {
	s.T().Setenv("TIDY_CHECK_EXCLUDE", "/^gen{1")

	_, err := LoadFrom(s.dir)
	s.Require().ErrorIs(err, prerrors.ErrInvalidRule)
	s.Contains(err.Error(), "unterminated pattern")
}

func (s *ConfigTestSuite) TestInvalidValuesFallBackToDefaults() {
	s.T().Setenv("TIDY_CHECK_MUTE", "maybe")
	s.T().Setenv("TIDY_CHECK_TIMEOUT_SECONDS", "soon")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.False(cfg.Mute)
	s.Equal(30, cfg.TimeoutSeconds)
}

func (s *ConfigTestSuite) TestEnvFile() {
	envPath := s.write(EnvFileName, "TIDY_CHECK_NO_PLAN=true\nTIDY_CHECK_LOG_LEVEL=debug\n")
	s.T().Cleanup(func() {
		_ = os.Unsetenv("TIDY_CHECK_NO_PLAN")
		_ = os.Unsetenv("TIDY_CHECK_LOG_LEVEL")
	})

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)

	s.Equal(envPath, cfg.EnvFile)
	s.True(cfg.NoPlan)
	s.Equal("debug", cfg.LogLevel)
}

func (s *ConfigTestSuite) TestEnvFileDoesNotOverrideProcessEnv() {
	s.write(EnvFileName, "TIDY_CHECK_OUTPUT=tap\n")
	s.T().Setenv("TIDY_CHECK_OUTPUT", "console")

	cfg, err := LoadFrom(s.dir)
	s.Require().NoError(err)
	s.Equal(OutputConsole, cfg.Output)
}

func (s *ConfigTestSuite) TestValidationErrorsAreCollected() {
	s.T().Setenv("TIDY_CHECK_TIMEOUT_SECONDS", "0")
	s.T().Setenv("TIDY_CHECK_LOG_LEVEL", "loud")
	s.T().Setenv("TIDY_CHECK_OUTPUT", "junit")

	_, err := LoadFrom(s.dir)
	s.Require().Error(err)

	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Len(validationErr.Errors, 3)
	s.Contains(err.Error(), "TIDY_CHECK_TIMEOUT_SECONDS must be greater than 0")
	s.Contains(err.Error(), "TIDY_CHECK_LOG_LEVEL")
	s.Contains(err.Error(), "TIDY_CHECK_OUTPUT")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, ".perltidyrc")
	require.NoError(t, os.WriteFile(profile, []byte("-l=100\n"), 0o600))

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(_ *Config) {}, ""},
		{"existing profile", func(c *Config) { c.Profile = profile }, ""},
		{"missing profile", func(c *Config) { c.Profile = filepath.Join(dir, "nope") }, "profile does not exist"},
		{"empty path", func(c *Config) { c.Path = " " }, "TIDY_CHECK_PATH"},
		{"empty formatter", func(c *Config) { c.Formatter = "" }, "TIDY_CHECK_FORMATTER"},
		{"uppercase output", func(c *Config) { c.Output = "TAP" }, ""},
		{"malformed rule", func(c *Config) { c.Exclude = filter.Rules{{}} }, "invalid exclude rule"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunOptions(t *testing.T) {
	cfg := Default()
	cfg.Path = "lib"
	cfg.Exclude = filter.Rules{filter.Prefix("inc/")}
	cfg.Profile = ".perltidyrc"
	cfg.Mute = true
	cfg.SkipAll = true
	cfg.NoPlan = true

	opts := cfg.RunOptions()
	assert.Equal(t, "lib", opts.Root)
	assert.Equal(t, []string{"inc/"}, opts.Exclude.Strings())
	assert.Equal(t, ".perltidyrc", opts.Profile)
	assert.True(t, opts.Mute)
	assert.True(t, opts.SkipAll)
	assert.True(t, opts.NoPlan)
}


func TestGetConfigHelp(t *testing.T) {
	help := GetConfigHelp()
	for _, key := range envKeys {
		assert.Contains(t, help, key)
	}
	assert.Contains(t, help, FileName)
	assert.Contains(t, help, EnvFileName)
}
