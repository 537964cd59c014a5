package exam

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// OCR status labels reported by Analyze.
const (
	OCRStatusDone    = "完了"
	OCRStatusSkipped = "未実施"
)

// AnalyzeRequest selects the past tests to analyze.
type AnalyzeRequest struct {
	School   string `json:"school"`
	Grade    string `json:"grade"`
	Term     string `json:"term"`
	Subjects string `json:"subjects"` // e.g. "数学・英語"
}

// Ratio is the share of one topic, in percent.
type Ratio struct {
	Label string `json:"label" yaml:"label"`
	Rate  int    `json:"rate" yaml:"rate"`
}

// Difficulty is one level of the difficulty split.
type Difficulty struct {
	Level  string `json:"level" yaml:"level"`
	Detail string `json:"detail" yaml:"detail"`
}

// AnalyzeResult summarizes past tests.
type AnalyzeResult struct {
	Ratio      []Ratio      `json:"ratio" yaml:"ratio"`
	Difficulty []Difficulty `json:"difficulty" yaml:"difficulty"`
	OCRStatus  string       `json:"ocr_status" yaml:"ocr_status"`
	Sources    []string     `json:"sources" yaml:"sources"`
}

type bucket struct {
	label    string
	keywords []string
}

var subjectBuckets = map[string][]bucket{
	"数学": {
		{"数と式", []string{"方程式", "式", "計算"}},
		{"関数", []string{"関数", "比例", "一次関数", "二次関数"}},
		{"図形", []string{"図形", "角", "面積", "合同", "相似"}},
		{"確率・資料", []string{"確率", "資料", "度数分布"}},
	},
	"英語": {
		{"文法", []string{"文法", "語順", "時制", "助動詞"}},
		{"読解", []string{"長文", "読解", "本文"}},
		{"英作文", []string{"英作文", "作文"}},
		{"リスニング", []string{"リスニング", "音声"}},
	},
}

// subjectOrder fixes the output order when several subjects are requested.
var subjectOrder = []string{"数学", "英語"}

var defaultRatio = []Ratio{
	{"数と式", 30},
	{"関数", 25},
	{"図形", 25},
	{"確率・資料", 20},
}

var longAnswerKeywords = []string{"理由", "説明", "記述", "英文で", "証明"}

// Analyze reads the matching past tests and estimates topic ratios and the
// difficulty split from their text.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	pdfs, err := s.cfg.Layout.FindPastTests(req.School, req.Grade, req.Term)
	if err != nil {
		return nil, fmt.Errorf("failed to find past tests: %w", err)
	}

	log := s.logger.With("school", req.School, "grade", req.Grade, "term", req.Term)
	log.Info("analyzing past tests", "files", len(pdfs))

	var texts []string
	for _, path := range pdfs {
		pages, err := s.texts.pageTexts(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("skipping unreadable past test", "file", path, "error", err)
			continue
		}
		texts = append(texts, pages...)
	}

	combined := strings.Join(texts, "\n")
	result := &AnalyzeResult{
		Ratio:      BuildRatio(combined, NormalizeSubjects(req.Subjects)),
		Difficulty: BuildDifficulty(combined),
		OCRStatus:  OCRStatusSkipped,
		Sources:    pdfs,
	}
	if len(texts) > 0 {
		result.OCRStatus = OCRStatusDone
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}
	return result, nil
}

// BuildRatio estimates topic shares for each recognized subject from keyword
// counts. When no subject is recognized a fixed math split is returned.
func BuildRatio(text string, subjects []string) []Ratio {
	requested := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		requested[s] = true
	}

	var out []Ratio
	for _, subject := range subjectOrder {
		if !requested[subject] {
			continue
		}
		buckets := subjectBuckets[subject]
		counts := make([]int, len(buckets))
		for i, b := range buckets {
			counts[i] = CountKeywordHits(text, b.keywords)
		}
		out = append(out, normalizeRatio(buckets, counts)...)
	}

	if len(out) == 0 {
		out = append(out, defaultRatio...)
	}
	return out
}

func normalizeRatio(buckets []bucket, counts []int) []Ratio {
	total := 0
	for _, c := range counts {
		total += c
	}

	out := make([]Ratio, len(buckets))
	for i, b := range buckets {
		var rate float64
		if total <= 0 {
			rate = 100 / float64(len(buckets))
		} else {
			rate = float64(counts[i]) / float64(total) * 100
		}
		out[i] = Ratio{Label: b.label, Rate: int(math.RoundToEven(rate))}
	}
	return out
}

// BuildDifficulty splits a test into basic, standard and advanced shares.
// Short numeric answers count toward the basic share; the remainder is
// split 60/40 between standard and advanced.
func BuildDifficulty(text string) []Difficulty {
	short := len(numberTokens(text, 2))
	long := CountKeywordHits(text, longAnswerKeywords)
	total := max(short+long, 1)

	base := int(math.RoundToEven(float64(short) / float64(total) * 100))
	standard := int(math.RoundToEven(float64(100-base) * 0.6))
	hard := 100 - base - standard

	return []Difficulty{
		{Level: "基礎", Detail: fmt.Sprintf("%d%%（短答中心）", base)},
		{Level: "標準", Detail: fmt.Sprintf("%d%%（記述・応用）", standard)},
		{Level: "応用", Detail: fmt.Sprintf("%d%%（融合・長文）", hard)},
	}
}
