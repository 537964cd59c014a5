package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/pagemap"
	"github.com/jackzampolin/mockexam/internal/pdfdoc"
)

// GenerateRequest describes one mock exam.
type GenerateRequest struct {
	School      string `json:"school"`
	Grade       string `json:"grade"`
	Term        string `json:"term"`
	Conformance string `json:"conformance"`
	// Range lists textbook pages, e.g. "12-15, 20〜22". Empty takes every page.
	Range string `json:"range"`
}

// GenerateResult reports the written files. A path is empty when its side
// had no pages.
type GenerateResult struct {
	RunID         string            `json:"run_id" yaml:"run_id"`
	QuestionsPath string            `json:"questions_path" yaml:"questions_path"`
	AnswersPath   string            `json:"answers_path" yaml:"answers_path"`
	QuestionPages int               `json:"question_pages" yaml:"question_pages"`
	AnswerPages   int               `json:"answer_pages" yaml:"answer_pages"`
	Method        pagemap.Method    `json:"method,omitempty" yaml:"method,omitempty"`
	TargetPages   []int             `json:"target_pages" yaml:"target_pages"`
	Notes         []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Warnings      []pagemap.Warning `json:"-" yaml:"-"`
}

// Generate selects the question and answer pages covering the requested
// textbook pages and writes them as two PDFs in the output directory.
//
// Pages come from the page map when it covers a file; otherwise a page is
// kept when its text carries one of the target pages as a marker or as a
// standalone number. A malformed page_map.csv fails the request.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	ps, err := s.cfg.Layout.ProblemSet(req.Conformance)
	if err != nil {
		return nil, err
	}
	if !ps.Exists {
		return nil, fmt.Errorf("%w: %s", library.ErrNoProblemSet, req.Conformance)
	}

	runID := s.cfg.NewID()
	log := s.logger.With("run_id", runID, "conformance", req.Conformance)

	result := &GenerateResult{
		RunID:       runID,
		TargetPages: ParsePageRanges(req.Range),
	}
	if result.TargetPages == nil {
		result.TargetPages = []int{}
	}

	questionMap, answerMap := pagemap.NewMap(), pagemap.NewMap()
	if len(result.TargetPages) > 0 {
		res, err := s.cfg.Resolver.Resolve(ctx, req.Conformance)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page map: %w", err)
		}
		questionMap, answerMap = res.Map, res.Answers
		result.Method = res.Method
		result.Warnings = res.Warnings
	} else if strings.TrimSpace(req.Range) != "" {
		result.Notes = append(result.Notes, fmt.Sprintf("range %q has no page numbers; using every page", req.Range))
	}

	log.Info("selecting pages", "targets", len(result.TargetPages), "method", result.Method)

	questions, notes, err := s.selectPages(ctx, log, ps.Questions, questionMap, result.TargetPages)
	if err != nil {
		return nil, err
	}
	result.Notes = append(result.Notes, notes...)

	answers, notes, err := s.selectPages(ctx, log, ps.Answers, answerMap, result.TargetPages)
	if err != nil {
		return nil, err
	}
	result.Notes = append(result.Notes, notes...)

	result.QuestionPages = countPages(questions)
	result.AnswerPages = countPages(answers)
	if result.QuestionPages == 0 && result.AnswerPages == 0 {
		return nil, fmt.Errorf("%w for %s range %q", ErrNoPagesSelected, req.Conformance, req.Range)
	}

	if err := s.cfg.Layout.EnsureOutput(); err != nil {
		return nil, err
	}
	base := outputBaseName(req, s.cfg.Now().Format("20060102_150405"), runID)

	if result.QuestionPages > 0 {
		result.QuestionsPath = s.cfg.Layout.OutputFile(base + "_questions.pdf")
		if err := pdfdoc.WriteSelections(questions, result.QuestionsPath); err != nil {
			return nil, fmt.Errorf("failed to write questions: %w", err)
		}
	} else {
		result.Notes = append(result.Notes, "no question pages selected; questions PDF not written")
	}

	if result.AnswerPages > 0 {
		result.AnswersPath = s.cfg.Layout.OutputFile(base + "_answers.pdf")
		if err := pdfdoc.WriteSelections(answers, result.AnswersPath); err != nil {
			return nil, fmt.Errorf("failed to write answers: %w", err)
		}
	} else {
		result.Notes = append(result.Notes, "no answer pages selected; answers PDF not written")
	}

	log.Info("mock exam generated",
		"questions", result.QuestionsPath, "question_pages", result.QuestionPages,
		"answers", result.AnswersPath, "answer_pages", result.AnswerPages)
	return result, nil
}

// selectPages picks the pages of each file in order.
func (s *Service) selectPages(ctx context.Context, log *slog.Logger, files []string, m *pagemap.Map, targets []int) ([]pdfdoc.Selection, []string, error) {
	var selections []pdfdoc.Selection
	var notes []string

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		name := filepath.Base(path)

		count, err := s.cfg.Source.PageCount(path)
		if err != nil {
			notes = append(notes, fmt.Sprintf("%s: unreadable, skipped", name))
			log.Warn("skipping unreadable PDF", "file", name, "error", err)
			continue
		}

		var pages []int
		switch mapped := m.PagesFor(name, targets); {
		case len(targets) == 0:
			pages = allPages(count)
		case len(mapped) > 0:
			for _, p := range mapped {
				if p > count {
					notes = append(notes, fmt.Sprintf("%s: mapped page %d exceeds page count %d", name, p, count))
					continue
				}
				pages = append(pages, p)
			}
		default:
			pages, err = s.matchPages(ctx, path, targets)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				notes = append(notes, fmt.Sprintf("%s: no readable text, skipped", name))
				log.Warn("text match failed", "file", name, "error", err)
				continue
			}
		}

		if len(pages) > 0 {
			log.Debug("pages selected", "file", name, "pages", pages)
			selections = append(selections, pdfdoc.Selection{Path: path, Pages: pages})
		}
	}
	return selections, notes, nil
}

// matchPages returns the pages whose text mentions one of the targets.
func (s *Service) matchPages(ctx context.Context, path string, targets []int) ([]int, error) {
	texts, err := s.texts.pageTexts(ctx, path)
	if err != nil {
		return nil, err
	}
	var pages []int
	for i, text := range texts {
		if pageMatches(text, targets) {
			pages = append(pages, i+1)
		}
	}
	return pages, nil
}

func pageMatches(text string, targets []int) bool {
	if text == "" {
		return false
	}
	found := make(map[int]bool)
	for _, n := range pagemap.ExtractMarkers(text) {
		found[n] = true
	}
	for _, tok := range numberTokens(pagemap.NormalizeText(text), maxPageDigits) {
		if n, err := strconv.Atoi(tok); err == nil {
			found[n] = true
		}
	}
	return slices.ContainsFunc(targets, func(t int) bool { return found[t] })
}

func outputBaseName(req GenerateRequest, timestamp, runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	parts := []string{req.School, req.Grade, req.Term, req.Conformance, timestamp, id}
	return fileNameSanitizer.Replace(strings.Join(parts, "_"))
}

var fileNameSanitizer = strings.NewReplacer(" ", "", "　", "", "/", "_", "\\", "_")

func allPages(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func countPages(selections []pdfdoc.Selection) int {
	n := 0
	for _, s := range selections {
		n += len(s.Pages)
	}
	return n
}

// IsNotFound reports whether err means the conformance key has no problem set.
func IsNotFound(err error) bool {
	return errors.Is(err, library.ErrNoProblemSet)
}
