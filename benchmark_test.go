package tidycheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrz1836/go-tidy-check/internal/reporter"
	"github.com/mrz1836/go-tidy-check/internal/runner"
)

// createPerlTree writes modules, scripts and tests under a temporary root
func createPerlTree(b *testing.B, modules int) string {
	b.Helper()
	root := b.TempDir()

	write := func(name, content string) {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			b.Fatal(err)
		}
	}

	write("Makefile.PL", "use ExtUtils::MakeMaker;\nWriteMakefile(NAME => 'Bench');\n")
	for i := 0; i < modules; i++ {
		write(fmt.Sprintf("lib/Bench/Module%d.pm", i), fmt.Sprintf("package Bench::Module%d;\n\nsub new { bless {}, shift }\n\n1;\n", i))
		write(fmt.Sprintf("t/%03d-module.t", i), "use Test::More;\nok(1);\ndone_testing;\n")
		write(fmt.Sprintf("blib/lib/Bench/Module%d.pm", i), "copied\n")
	}
	return root
}

func benchmarkRun(b *testing.B, modules int) {
	root := createPerlTree(b, modules)
	r := runner.New(FormatterFunc(stripTrailing), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results, err := r.Run(context.Background(), runner.Options{Root: root}, reporter.NewTAP(nilWriter{}))
		if err != nil {
			b.Fatal(err)
		}
		if results.Failed != 0 {
			b.Fatalf("expected every file to be tidy, %d failed", results.Failed)
		}
	}
}

// BenchmarkRun_SmallProject measures a handful of modules
func BenchmarkRun_SmallProject(b *testing.B) {
	benchmarkRun(b, 3)
}

// BenchmarkRun_LargeProject measures a distribution with many modules and tests
func BenchmarkRun_LargeProject(b *testing.B) {
	benchmarkRun(b, 100)
}

// BenchmarkListFiles measures discovery and exclusion alone
func BenchmarkListFiles(b *testing.B) {
	root := createPerlTree(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, err := ListFiles(Options{Path: root})
		if err != nil {
			b.Fatal(err)
		}
		if len(files) != 201 {
			b.Fatalf("expected 201 files, got %d", len(files))
		}
	}
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
