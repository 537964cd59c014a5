package pagemap

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/jackzampolin/mockexam/internal/library"
)

// Config configures a Resolver.
type Config struct {
	Layout *library.Layout
	Source PageSource
	// Detector may be nil when OCREnabled is false.
	Detector   Detector
	OCREnabled bool

	DuplicatePolicy DuplicatePolicy
	MarkerPolicy    MarkerPolicy

	// PreferTextLayer uses embedded PDF text when at least MinTextRatio
	// of a file's pages carry some.
	PreferTextLayer bool
	MinTextRatio    float64

	Workers     int           // 0 = number of CPUs
	PageTimeout time.Duration // 0 = no per-page bound

	Logger *slog.Logger
}

// Resolver builds page maps for conformance keys.
// It holds no per-key state; every Resolve starts from disk.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Layout == nil {
		return nil, fmt.Errorf("layout is required")
	}
	if cfg.OCREnabled && cfg.Source == nil {
		return nil, fmt.Errorf("page source is required when OCR is enabled")
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = DuplicateOverwrite
	}
	if cfg.MarkerPolicy == "" {
		cfg.MarkerPolicy = MarkerFirst
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		cfg:    cfg,
		logger: logger.With("component", "pagemap"),
	}, nil
}

// Resolve produces the page map of one conformance key.
//
// An explicit page_map.csv wins outright; a malformed table fails the
// resolution with *MalformedMappingError. Without a table, markers are
// inferred from the question and answer PDFs when OCR is enabled, and an
// empty map with MethodNone is returned when it is not. A key with no
// directory resolves like an empty problem set. Scan problems are recorded
// as warnings and never fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, key string) (*Resolution, error) {
	ps, err := r.cfg.Layout.ProblemSet(key)
	if err != nil {
		return nil, err
	}
	log := r.logger.With("conformance", key)
	if !ps.Exists {
		log.Debug("problem set directory not found", "dir", ps.Dir)
	}

	if ps.HasPageMap() {
		table, err := LoadTable(ps.PageMapPath, TableOptions{
			DuplicatePolicy: r.cfg.DuplicatePolicy,
			IsAnswer:        ps.HasAnswer,
			IsQuestion:      ps.HasQuestion,
		})
		if err != nil {
			return nil, err
		}
		res := &Resolution{
			Key:      key,
			Method:   MethodExplicit,
			Map:      table.Questions,
			Answers:  table.Answers,
			Warnings: table.Warnings,
		}
		r.logWarnings(log, res.Warnings)
		log.Info("page map loaded", "method", res.Method, "entries", res.Map.Len(), "answer_entries", res.Answers.Len())
		return res, nil
	}

	if !r.cfg.OCREnabled {
		log.Debug("no page map and OCR disabled")
		return &Resolution{Key: key, Method: MethodNone, Map: NewMap(), Answers: NewMap()}, nil
	}

	res := &Resolution{Key: key, Method: MethodInferred}

	questions, qWarnings, err := r.infer(ctx, log, ps.Questions)
	if err != nil {
		return nil, err
	}
	answers, aWarnings, err := r.infer(ctx, log, ps.Answers)
	if err != nil {
		return nil, err
	}
	res.Map = questions
	res.Answers = answers
	res.Warnings = append(qWarnings, aWarnings...)

	r.logWarnings(log, res.Warnings)
	log.Info("page map inferred", "method", res.Method, "entries", res.Map.Len(),
		"answer_entries", res.Answers.Len(), "warnings", len(res.Warnings))
	return res, nil
}

func (r *Resolver) logWarnings(log *slog.Logger, warnings []Warning) {
	for _, w := range warnings {
		switch w := w.(type) {
		case *PageScanWarning:
			log.Warn("page scan", "file", w.File, "page", w.Page, "reason", w.Reason, "error", w.Err)
		case *DuplicateMappingWarning:
			log.Warn("duplicate mapping", "textbook_page", w.TextbookPage,
				"kept_file", w.Kept.PDFFile, "kept_page", w.Kept.PDFPage,
				"discarded_file", w.Discarded.PDFFile, "discarded_page", w.Discarded.PDFPage)
		default:
			log.Warn(w.String(), "kind", w.Kind())
		}
	}
}
