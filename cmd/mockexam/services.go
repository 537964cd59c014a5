package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/exam"
	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/ocr"
	"github.com/jackzampolin/mockexam/internal/pagemap"
	"github.com/jackzampolin/mockexam/internal/pdfdoc"
	"github.com/jackzampolin/mockexam/internal/svcctx"
)

// buildServices wires the library, PDF, OCR, resolver and exam services
// from one config snapshot.
func buildServices(cfg *config.Config, logger *slog.Logger) (*svcctx.Services, error) {
	layout := library.New(cfg.Library)

	doc, err := pdfdoc.New(pdfdoc.Config{
		Renderer:    cfg.OCR.Renderer,
		PdftoppmCmd: cfg.OCR.PdftoppmCmd,
		DPI:         cfg.OCR.DPI,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up PDF renderer: %w", err)
	}

	var detector pagemap.Detector
	if cfg.OCR.Enabled {
		engine, err := ocr.New(cfg, ocr.Options{Logger: logger})
		switch {
		case errors.Is(err, ocr.ErrEngineUnavailable):
			// Pages that need OCR are reported as scan warnings.
			logger.Warn("OCR engine unavailable", "engine", cfg.OCR.Engine, "error", err)
		case err != nil:
			return nil, err
		default:
			detector = engine
		}
	}

	resolver, err := pagemap.NewResolver(pagemap.Config{
		Layout:          layout,
		Source:          doc,
		Detector:        detector,
		OCREnabled:      cfg.OCR.Enabled,
		DuplicatePolicy: pagemap.DuplicatePolicy(cfg.PageMap.DuplicatePolicy),
		MarkerPolicy:    pagemap.MarkerPolicy(cfg.PageMap.MarkerPolicy),
		PreferTextLayer: cfg.OCR.PreferTextLayer,
		MinTextRatio:    cfg.OCR.MinTextRatio,
		Workers:         cfg.OCR.Workers,
		PageTimeout:     cfg.OCR.PageTimeout,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	svc, err := exam.New(exam.Config{
		Layout:          layout,
		Resolver:        resolver,
		Source:          doc,
		Detector:        detector,
		OCREnabled:      cfg.OCR.Enabled,
		PreferTextLayer: cfg.OCR.PreferTextLayer,
		MinTextRatio:    cfg.OCR.MinTextRatio,
		PageTimeout:     cfg.OCR.PageTimeout,
		Workers:         cfg.OCR.Workers,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	return &svcctx.Services{
		Layout:   layout,
		Resolver: resolver,
		Exam:     svc,
		Logger:   logger,
	}, nil
}
