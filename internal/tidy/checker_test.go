package tidy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/perltidy"
)

// stripTrailingSpaces is a stand-in formatter: tidy means no trailing blanks on any line
func stripTrailingSpaces(_ context.Context, source, _ string) (perltidy.Result, error) {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return perltidy.Result{Output: strings.Join(lines, "\n")}, nil
}

type CheckerTestSuite struct {
	suite.Suite

	dir         string
	diagnostics []string
	checker     *Checker
}

func TestCheckerSuite(t *testing.T) {
	suite.Run(t, new(CheckerTestSuite))
}

func (s *CheckerTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.diagnostics = nil
	s.checker = NewChecker(perltidy.Func(stripTrailingSpaces), Options{
		Sink: func(text string) { s.diagnostics = append(s.diagnostics, text) },
	})
}

func (s *CheckerTestSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *CheckerTestSuite) TestTidyFile() {
	file := s.write("a.pm", "package A;\n\n1;\n")

	outcome := s.checker.Check(context.Background(), file)

	s.Equal(KindTidy, outcome.Kind)
	s.True(outcome.Passed())
	s.Empty(outcome.Diagnostics())
	s.Empty(s.diagnostics)
}

func (s *CheckerTestSuite) TestNotTidyFile() {
	file := s.write("b.pm", "package B;   \n\n1;\n")

	outcome := s.checker.Check(context.Background(), file)

	s.Equal(KindNotTidy, outcome.Kind)
	s.False(outcome.Passed())
	s.NotEmpty(outcome.Detail)
	s.Require().Len(s.diagnostics, 2)
	s.Equal("the file '"+file+"' is not tidy", s.diagnostics[0])
	s.Contains(s.diagnostics[1], `package B;\s\s\s`)
}

func (s *CheckerTestSuite) TestTrailingLineEndingsIgnored() {
	formatter := perltidy.Func(func(_ context.Context, source, _ string) (perltidy.Result, error) {
		return perltidy.Result{Output: TrimLineEndings(source) + "\n"}, nil
	})
	checker := NewChecker(formatter, Options{Sink: func(string) {}})

	for _, content := range []string{"1;", "1;\n", "1;\n\n\n", "1;\r\n", "1;\r\n\r\n"} {
		file := s.write("trailing.pm", content)
		s.True(checker.IsTidy(context.Background(), file), "content %q", content)
	}
}

func (s *CheckerTestSuite) TestInternalLineEndingsNotNormalized() {
	formatter := perltidy.Func(func(_ context.Context, source, _ string) (perltidy.Result, error) {
		return perltidy.Result{Output: strings.ReplaceAll(source, "\r\n", "\n")}, nil
	})
	checker := NewChecker(formatter, Options{Sink: func(string) {}})

	file := s.write("crlf.pm", "package C;\r\n1;\r\n")
	outcome := checker.Check(context.Background(), file)
	s.Equal(KindNotTidy, outcome.Kind)
}

func (s *CheckerTestSuite) TestMissingFile() {
	file := filepath.Join(s.dir, "missing.pm")

	outcome := s.checker.Check(context.Background(), file)

	s.Equal(KindLoadError, outcome.Kind)
	s.False(outcome.Passed())
	s.Equal([]string{"unable to find or read '" + file + "'"}, s.diagnostics)
}

func (s *CheckerTestSuite) TestEngineErrorTakesPrecedence() {
	formatter := perltidy.Func(func(_ context.Context, source, _ string) (perltidy.Result, error) {
		// Output identical to input, but the engine complained
		return perltidy.Result{Output: source, Errors: "There is no previous '{' to match a '}' on line 3\n"}, nil
	})
	checker := NewChecker(formatter, Options{
		Sink: func(text string) { s.diagnostics = append(s.diagnostics, text) },
	})
	file := s.write("broken.pm", "sub x {\n}\n}\n")

	outcome := checker.Check(context.Background(), file)

	s.Equal(KindEngineError, outcome.Kind)
	s.Require().Len(s.diagnostics, 2)
	s.Equal("formatter reported the following errors:", s.diagnostics[0])
	s.Equal("There is no previous '{' to match a '}' on line 3\n", s.diagnostics[1])
}

func (s *CheckerTestSuite) TestFormatterInvocationFailure() {
	formatter := perltidy.Func(func(_ context.Context, _, _ string) (perltidy.Result, error) {
		return perltidy.Result{}, prerrors.NewToolNotFoundError("perltidy", "install it")
	})
	checker := NewChecker(formatter, Options{
		Sink: func(text string) { s.diagnostics = append(s.diagnostics, text) },
	})
	file := s.write("a.pm", "1;\n")

	outcome := checker.Check(context.Background(), file)

	s.Equal(KindEngineError, outcome.Kind)
	s.Require().Len(s.diagnostics, 2)
	s.Equal("perltidy not found\ninstall it", s.diagnostics[1])
}

func (s *CheckerTestSuite) TestProfilePassedToFormatter() {
	var got string
	formatter := perltidy.Func(func(_ context.Context, source, profile string) (perltidy.Result, error) {
		got = profile
		return perltidy.Result{Output: source}, nil
	})
	checker := NewChecker(formatter, Options{Profile: "t/perltidyrc"})
	file := s.write("a.pm", "1;\n")

	s.True(checker.IsTidy(context.Background(), file))
	s.Equal("t/perltidyrc", got)
}

func (s *CheckerTestSuite) TestMuteSuppressesDiagnostics() {
	checker := NewChecker(perltidy.Func(stripTrailingSpaces), Options{
		Mute: true,
		Sink: func(text string) { s.diagnostics = append(s.diagnostics, text) },
	})
	file := s.write("b.pm", "1;  \n")

	outcome := checker.Check(context.Background(), file)

	s.Equal(KindNotTidy, outcome.Kind)
	s.Empty(s.diagnostics)
	s.NotEmpty(outcome.Diagnostics())
}

func TestTrimLineEndings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"1;", "1;"},
		{"1;\n", "1;"},
		{"1;\r\n\r\n", "1;"},
		{"1;\n\r\n\r", "1;"},
		{"1;  \n", "1;  "},
		{"a\r\nb\r\n", "a\r\nb"},
		{"\n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimLineEndings(tt.input))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tidy", KindTidy.String())
	assert.Equal(t, "not tidy", KindNotTidy.String())
	assert.Equal(t, "load error", KindLoadError.String())
	assert.Equal(t, "engine error", KindEngineError.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestNewCheckerDefaults(t *testing.T) {
	checker := NewChecker(perltidy.NewCommandFormatter(), Options{})
	require.NotNil(t, checker.opts.Sink)
	require.NotNil(t, checker.opts.Renderer)
	assert.False(t, checker.opts.Mute)
}
