package main

import (
	"errors"
	"runtime/debug"
	"strings"
	"time"
)

// Build-time variables injected via ldflags
//
//nolint:gochecknoglobals // These are build-time injected variables
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// ErrUnableToParseTime is returned when a VCS timestamp has no known layout
var ErrUnableToParseTime = errors.New("unable to parse time")

// BuildInfo resolves version details from ldflags, falling back to the
// VCS stamp embedded by the Go toolchain
type BuildInfo struct {
	version   string
	commit    string
	buildDate string
	modified  bool
}

// NewBuildInfo collects the build information of the running binary
func NewBuildInfo() *BuildInfo {
	return &BuildInfo{
		version:   getVersionWithFallback(),
		commit:    getCommitWithFallback(),
		buildDate: getBuildDateWithFallback(),
		modified:  vcsSetting("vcs.modified") == "true",
	}
}

// Version returns the release version
func (b *BuildInfo) Version() string {
	return b.version
}

// Commit returns the source revision
func (b *BuildInfo) Commit() string {
	return b.commit
}

// BuildDate returns when the binary was built
func (b *BuildInfo) BuildDate() string {
	return b.buildDate
}

// IsModified reports whether the working tree had uncommitted changes
func (b *BuildInfo) IsModified() bool {
	return b.modified
}

func getVersionWithFallback() string {
	if Version != "" && Version != "dev" && !isTemplateString(Version) {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

func getCommitWithFallback() string {
	if Commit != "" && Commit != "none" && !isTemplateString(Commit) {
		return Commit
	}
	if revision := vcsSetting("vcs.revision"); revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		return revision
	}
	return "none"
}

func getBuildDateWithFallback() string {
	if BuildDate != "" && BuildDate != "unknown" && !isTemplateString(BuildDate) {
		return BuildDate
	}
	if stamp := vcsSetting("vcs.time"); stamp != "" {
		if t, err := parseTime(stamp); err == nil {
			return t.Format("2006-01-02 15:04:05 UTC")
		}
	}
	return "unknown"
}

// vcsSetting reads one key of the embedded VCS stamp
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// isTemplateString reports whether s still holds unexpanded {{ }} markers
func isTemplateString(s string) bool {
	return strings.Contains(s, "{{") && strings.Contains(s, "}}")
}

// parseTime parses a VCS timestamp and returns it in UTC
func parseTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrUnableToParseTime
}
