// Package exam assembles mock exams from the PDF library and analyzes past tests.
package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/pagemap"
)

// ErrNoPagesSelected is returned by Generate when neither side has any page.
var ErrNoPagesSelected = errors.New("no pages selected")

// Resolver produces page maps. *pagemap.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, key string) (*pagemap.Resolution, error)
}

// Config configures a Service.
type Config struct {
	Layout   *library.Layout
	Resolver Resolver
	Source   pagemap.PageSource
	// Detector may be nil when OCREnabled is false.
	Detector   pagemap.Detector
	OCREnabled bool

	PreferTextLayer bool
	MinTextRatio    float64
	PageTimeout     time.Duration
	Workers         int // 0 = number of CPUs

	Logger *slog.Logger

	// Now and NewID default to time.Now and a random UUID.
	Now   func() time.Time
	NewID func() string
}

// Service runs exam generation and past-test analysis.
type Service struct {
	cfg    Config
	texts  *textReader
	logger *slog.Logger
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Layout == nil {
		return nil, fmt.Errorf("layout is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("page source is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exam")

	return &Service{
		cfg: cfg,
		texts: &textReader{
			source:          cfg.Source,
			detector:        cfg.Detector,
			ocrEnabled:      cfg.OCREnabled,
			preferTextLayer: cfg.PreferTextLayer,
			minTextRatio:    cfg.MinTextRatio,
			pageTimeout:     cfg.PageTimeout,
			workers:         cfg.Workers,
			logger:          logger,
		},
		logger: logger,
	}, nil
}
