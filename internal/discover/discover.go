// Package discover collects the Perl source files that tidy checks run against
package discover

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
	"github.com/mrz1836/go-tidy-check/internal/filter"
)

// Suffixes are the file name endings recognized as Perl sources:
// modules, scripts, module templates and tests
//
//nolint:gochecknoglobals // Fixed suffix set
var Suffixes = []string{".pl", ".pm", ".PL", ".t"}

// HasSourceSuffix reports whether name ends in one of Suffixes
func HasSourceSuffix(name string) bool {
	for _, suffix := range Suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// SourceType names the kind of Perl source a file name denotes, or "" if none
func SourceType(name string) string {
	switch {
	case strings.HasSuffix(name, ".pm"):
		return "module"
	case strings.HasSuffix(name, ".pl"):
		return "script"
	case strings.HasSuffix(name, ".PL"):
		return "template"
	case strings.HasSuffix(name, ".t"):
		return "test"
	default:
		return ""
	}
}

// CheckRoot verifies that root exists and is a directory
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prerrors.NewRootError(prerrors.ErrRootNotFound, root)
		}
		return prerrors.NewCheckError(err, "failed to stat root "+root, "Check the permissions of the root directory.")
	}
	if !info.IsDir() {
		return prerrors.NewRootError(prerrors.ErrRootNotDirectory, root)
	}
	return nil
}

// ListFiles walks root and returns every source file not excluded by rules,
// sorted ascending. Paths are slash-separated as built by the walk.
func ListFiles(root string, rules []filter.Rule) ([]string, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subdirectories are skipped, not fatal
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}

		candidate := filepath.ToSlash(path)
		if filter.IsExcluded(candidate, rules) {
			return nil
		}
		if HasSourceSuffix(d.Name()) {
			files = append(files, candidate)
		}
		return nil
	})
	if err != nil {
		return nil, prerrors.NewCheckError(err, "failed to walk "+root, "Check the permissions of the root directory.")
	}

	sort.Strings(files)
	return files, nil
}

// isRegular reports whether the entry is a regular file, following symlinks
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
