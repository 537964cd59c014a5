// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/library"
)

// TestingT is a subset of testing.T used by fixtures.
type TestingT interface {
	Name() string
	Cleanup(func())
	Logf(format string, args ...any)
	Helper()
}

// Logger returns a logger that writes to stderr when MOCKEXAM_TEST_LOG is set
// and discards everything otherwise.
func Logger() *slog.Logger {
	if os.Getenv("MOCKEXAM_TEST_LOG") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LibraryConfig returns library paths rooted in a fresh temp directory.
func LibraryConfig(t *testing.T) config.LibraryCfg {
	t.Helper()
	root := t.TempDir()
	return config.LibraryCfg{
		PastTestsDB: filepath.Join(root, "past_tests_db"),
		ProblemSets: filepath.Join(root, "problem_sets"),
		Output:      filepath.Join(root, "generated"),
	}
}

// Library returns a Layout rooted in a fresh temp directory.
func Library(t *testing.T) *library.Layout {
	t.Helper()
	return library.New(LibraryConfig(t))
}

// RequireBinary skips the test when name is not on PATH or -short is set.
func RequireBinary(t *testing.T, name string) string {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping %s test in short mode", name)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not installed", name)
	}
	return path
}

// FakeCommand writes an executable shell script and returns its path.
func FakeCommand(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write fake %s: %v", name, err)
	}
	return path
}
