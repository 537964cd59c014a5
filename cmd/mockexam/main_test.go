package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/mockexam/internal/testutil"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		outputFormat = "yaml"
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// setupLibrary points the legacy environment variables at a temp library
// with one problem set and an explicit page map.
func setupLibrary(t *testing.T) string {
	t.Helper()
	lib := testutil.LibraryConfig(t)
	t.Setenv("PAST_TESTS_DB", lib.PastTestsDB)
	t.Setenv("PROBLEM_SETS_DIR", lib.ProblemSets)
	t.Setenv("OUTPUT_DIR", lib.Output)
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(lib.ProblemSets, "東京書籍")
	testutil.WritePDF(t, filepath.Join(dir, "questions", "q1.pdf"), []string{"p.12", "p.13"})
	testutil.WritePDF(t, filepath.Join(dir, "answers", "a1.pdf"), []string{"ans p.12"})
	table := "textbook_page,pdf_file,pdf_page\n12,q1.pdf,1\n13,q1.pdf,2\n12,a1.pdf,1\n"
	if err := os.WriteFile(filepath.Join(dir, "page_map.csv"), []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}
	return lib.Output
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "mockexam ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPagemapResolveCommand(t *testing.T) {
	setupLibrary(t)

	out, err := execute(t, "-o", "json", "pagemap", "resolve", "東京書籍")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var res struct {
		Method  string `json:"method"`
		Map     []any  `json:"map"`
		Answers []any  `json:"answers"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Method != "explicit" || len(res.Map) != 2 || len(res.Answers) != 1 {
		t.Errorf("unexpected resolution %+v", res)
	}
}

func TestGenerateCommand(t *testing.T) {
	outDir := setupLibrary(t)

	out, err := execute(t, "-o", "json", "generate",
		"--school", "第一中", "--grade", "2年", "--term", "前期",
		"--conformance", "東京書籍", "--range", "13")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var res struct {
		Result struct {
			QuestionsPath string `json:"questions_path"`
			QuestionPages int    `json:"question_pages"`
			AnswersPath   string `json:"answers_path"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Result.QuestionPages != 1 {
		t.Errorf("expected 1 question page, got %d", res.Result.QuestionPages)
	}
	if filepath.Dir(res.Result.QuestionsPath) != outDir {
		t.Errorf("expected output in %s, got %s", outDir, res.Result.QuestionsPath)
	}
	// Page 13 has no answer entry and no answer page mentions it.
	if res.Result.AnswersPath != "" {
		t.Errorf("expected no answers file, got %s", res.Result.AnswersPath)
	}
}

func TestPagemapResolveCommand_UnknownKey(t *testing.T) {
	setupLibrary(t)

	out, err := execute(t, "-o", "json", "pagemap", "resolve", "啓林館")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	var res struct {
		Method string `json:"method"`
		Map    []any  `json:"map"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Method != "none" || len(res.Map) != 0 {
		t.Errorf("expected empty map with method none, got %+v", res)
	}
}

func TestGenerateCommand_UnknownConformance(t *testing.T) {
	setupLibrary(t)
	_, err := execute(t, "generate", "--conformance", "啓林館", "--range", "1")
	if err == nil {
		t.Fatal("expected error for unknown conformance")
	}
	if !strings.Contains(err.Error(), "problem set not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "page_map:") {
		t.Errorf("expected page_map section, got:\n%s", data)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/ps/page_map.csv", fsnotify.Write, true},
		{"/ps/questions/q1.PDF", fsnotify.Create, true},
		{"/ps/questions", fsnotify.Create, true},
		{"/ps/notes.txt", fsnotify.Write, false},
		{"/ps/page_map.csv", fsnotify.Chmod, false},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+tt.op.String(), func(t *testing.T) {
			if got := relevant(fsnotify.Event{Name: tt.name, Op: tt.op}); got != tt.want {
				t.Errorf("relevant(%s %s) = %v, expected %v", tt.name, tt.op, got, tt.want)
			}
		})
	}
}
