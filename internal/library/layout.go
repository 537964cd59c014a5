// Package library locates past tests and problem sets by folder convention.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackzampolin/mockexam/internal/config"
)

const (
	// QuestionsDirName holds a problem set's question PDFs.
	QuestionsDirName = "questions"

	// AnswersDirName holds a problem set's answer PDFs.
	AnswersDirName = "answers"

	// PageMapFileName is the optional explicit page map of a problem set.
	PageMapFileName = "page_map.csv"
)

// ErrNoProblemSet is returned when a conformance key cannot name a problem
// set directory.
var ErrNoProblemSet = errors.New("problem set not found")

// Layout represents the on-disk library:
//
//	past_tests_db/<school>/<grade>/<year>_<term>.pdf
//	problem_sets/<conformance>/{questions,answers}/*.pdf
//	problem_sets/<conformance>/page_map.csv
//	generated/
type Layout struct {
	pastTests   string
	problemSets string
	output      string
}

// New creates a Layout from library configuration.
func New(cfg config.LibraryCfg) *Layout {
	return &Layout{
		pastTests:   cfg.PastTestsDB,
		problemSets: cfg.ProblemSets,
		output:      cfg.Output,
	}
}

// PastTestsPath returns the root of the past test database.
func (l *Layout) PastTestsPath() string {
	return l.pastTests
}

// ProblemSetsPath returns the root of the problem set tree.
func (l *Layout) ProblemSetsPath() string {
	return l.problemSets
}

// OutputPath returns the directory generated PDFs are written to.
func (l *Layout) OutputPath() string {
	return l.output
}

// OutputFile returns the path of a generated file.
func (l *Layout) OutputFile(name string) string {
	return filepath.Join(l.output, name)
}

// EnsureOutput creates the output directory if it doesn't exist.
func (l *Layout) EnsureOutput() error {
	if err := os.MkdirAll(l.output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// FindPastTests lists the past test PDFs for a school and grade, sorted by name.
// A non-empty term keeps only files whose name contains it.
// Missing school or grade, or a missing directory, yields no files.
func (l *Layout) FindPastTests(school, grade, term string) ([]string, error) {
	if school == "" || grade == "" {
		return nil, nil
	}
	if !safeSegment(school) || !safeSegment(grade) {
		return nil, fmt.Errorf("invalid school or grade: %q/%q", school, grade)
	}

	pdfs, err := listPDFs(filepath.Join(l.pastTests, school, grade))
	if err != nil {
		return nil, err
	}
	if term == "" {
		return pdfs, nil
	}

	filtered := pdfs[:0]
	for _, p := range pdfs {
		if strings.Contains(filepath.Base(p), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ProblemSetDir returns the directory of a conformance key.
func (l *Layout) ProblemSetDir(key string) string {
	return filepath.Join(l.problemSets, key)
}

// ProblemSet loads the listing of a conformance key's directory.
// A key without a directory yields an empty problem set with Exists false;
// ErrNoProblemSet is kept for keys that cannot name a directory.
func (l *Layout) ProblemSet(key string) (*ProblemSet, error) {
	if key == "" || !safeSegment(key) {
		return nil, fmt.Errorf("%w: invalid conformance key %q", ErrNoProblemSet, key)
	}

	dir := l.ProblemSetDir(key)
	ps := &ProblemSet{
		Key:          key,
		Dir:          dir,
		QuestionsDir: filepath.Join(dir, QuestionsDirName),
		AnswersDir:   filepath.Join(dir, AnswersDirName),
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ps, nil
		}
		return nil, fmt.Errorf("failed to stat problem set: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoProblemSet, dir)
	}
	ps.Exists = true

	if ps.Questions, err = listPDFs(ps.QuestionsDir); err != nil {
		return nil, err
	}
	if ps.Answers, err = listPDFs(ps.AnswersDir); err != nil {
		return nil, err
	}
	ps.Questions = SortPDFsByNumber(ps.Questions)
	ps.Answers = SortPDFsByNumber(ps.Answers)

	pageMap := filepath.Join(dir, PageMapFileName)
	if _, err := os.Stat(pageMap); err == nil {
		ps.PageMapPath = pageMap
	}

	return ps, nil
}

// ProblemSet is the listing of one conformance key.
type ProblemSet struct {
	Key          string
	Dir          string
	QuestionsDir string
	AnswersDir   string
	Questions    []string // full paths, numeric-suffix order
	Answers      []string
	PageMapPath  string // empty when there is no page_map.csv
	Exists       bool
}

// HasPageMap returns true if the problem set carries an explicit page map.
func (p *ProblemSet) HasPageMap() bool {
	return p.PageMapPath != ""
}

// HasAnswer returns true if name is one of the answer PDFs.
func (p *ProblemSet) HasAnswer(name string) bool {
	return containsBase(p.Answers, name)
}

// HasQuestion returns true if name is one of the question PDFs.
func (p *ProblemSet) HasQuestion(name string) bool {
	return containsBase(p.Questions, name)
}

func containsBase(paths []string, name string) bool {
	for _, p := range paths {
		if filepath.Base(p) == name {
			return true
		}
	}
	return false
}

// listPDFs returns the *.pdf files directly under dir, sorted by name.
// A missing directory is not an error.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	return pdfs, nil
}

// safeSegment rejects values that would escape their parent directory.
func safeSegment(s string) bool {
	return s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
