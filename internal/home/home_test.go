package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-mockexam")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-mockexam" {
			t.Errorf("expected path /tmp/test-mockexam, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_ConfigPath(t *testing.T) {
	dir, _ := New("/tmp/test-mockexam")
	expected := "/tmp/test-mockexam/config.yaml"
	if dir.ConfigPath() != expected {
		t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
	}
}

func TestDir_EnsureExists(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "mockexam-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.Exists() {
		t.Error("expected directory to not exist yet")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !dir.Exists() {
		t.Error("expected directory to exist")
	}
}

func TestDir_ConfigFile(t *testing.T) {
	homeDir := t.TempDir()
	dir, _ := New(homeDir)

	// Run from an empty working directory so ./config.yaml is absent.
	t.Chdir(t.TempDir())

	if got := dir.ConfigFile("custom.yaml"); got != "custom.yaml" {
		t.Errorf("expected explicit path to win, got %s", got)
	}
	if got := dir.ConfigFile(""); got != "" {
		t.Errorf("expected no config file, got %s", got)
	}

	if err := os.WriteFile(dir.ConfigPath(), []byte("ocr:\n  dpi: 200\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := dir.ConfigFile(""); got != dir.ConfigPath() {
		t.Errorf("expected home config, got %s", got)
	}

	if err := os.WriteFile(ConfigFileName, []byte("ocr:\n  dpi: 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := dir.ConfigFile(""); got != ConfigFileName {
		t.Errorf("expected working directory config, got %s", got)
	}
}
