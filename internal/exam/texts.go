package exam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/mockexam/internal/pagemap"
)

// textReader returns the per-page text of a PDF, preferring the embedded
// text layer and falling back to OCR when too few pages carry text.
type textReader struct {
	source          pagemap.PageSource
	detector        pagemap.Detector
	ocrEnabled      bool
	preferTextLayer bool
	minTextRatio    float64
	pageTimeout     time.Duration
	workers         int
	logger          *slog.Logger
}

// pageTexts returns one trimmed string per page. Pages that OCR cannot read
// keep their embedded text, which may be empty.
func (tr *textReader) pageTexts(ctx context.Context, path string) ([]string, error) {
	name := filepath.Base(path)
	texts, err := tr.source.PageTexts(ctx, path)
	if err != nil {
		tr.logger.Debug("text layer unavailable", "file", name, "error", err)
		texts = nil
	}
	if len(texts) == 0 {
		n, err := tr.source.PageCount(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		texts = make([]string, n)
	}
	for i := range texts {
		texts[i] = strings.TrimSpace(texts[i])
	}

	if !tr.needsOCR(texts) {
		return texts, nil
	}

	tr.logger.Debug("running OCR", "file", name, "pages", len(texts))
	ocr := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tr.workers)
	for i := range texts {
		g.Go(func() error {
			text, err := tr.detectPage(gctx, path, i+1)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				tr.logger.Warn("OCR failed", "file", name, "page", i+1, "error", err)
				return nil
			}
			ocr[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, text := range ocr {
		if text != "" {
			texts[i] = text
		}
	}
	return texts, nil
}

func (tr *textReader) needsOCR(texts []string) bool {
	if !tr.ocrEnabled || tr.detector == nil || len(texts) == 0 {
		return false
	}
	if !tr.preferTextLayer {
		return true
	}
	return pagemap.TextCoverage(texts) < tr.minTextRatio
}

func (tr *textReader) detectPage(ctx context.Context, path string, page int) (string, error) {
	if tr.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tr.pageTimeout)
		defer cancel()
	}
	img, err := tr.source.RenderPage(ctx, path, page)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", page, err)
	}
	text, err := tr.detector.DetectText(ctx, img)
	if err != nil {
		return "", fmt.Errorf("detect page %d: %w", page, err)
	}
	return strings.TrimSpace(text), nil
}
