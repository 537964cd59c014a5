// Package pdfdoc reads, renders and assembles PDF files.
//
// Page counts and page assembly go through pdfcpu, the embedded text layer
// through ledongthuc/pdf, and rasterisation through an external renderer
// (pdftoppm, or MuPDF when built with the mupdf tag).
package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Config configures a Document.
type Config struct {
	// Renderer is "pdftoppm" (default) or "mupdf".
	Renderer    string
	PdftoppmCmd string
	DPI         int
	Logger      *slog.Logger
}

// Document reads and renders PDF pages. Pages are 1-based.
// It is safe for concurrent use.
type Document struct {
	renderer Renderer
	dpi      int
	logger   *slog.Logger
}

// New creates a Document with the configured renderer.
func New(cfg Config) (*Document, error) {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var r Renderer
	switch cfg.Renderer {
	case "", "pdftoppm":
		r = NewPdftoppm(cfg.PdftoppmCmd)
	case "mupdf":
		var err error
		if r, err = NewMuPDF(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}

	return &Document{
		renderer: r,
		dpi:      cfg.DPI,
		logger:   logger.With("component", "pdfdoc"),
	}, nil
}

// PageCount returns the number of pages in a PDF.
func (d *Document) PageCount(path string) (int, error) {
	return PageCount(path)
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// PageTexts returns the embedded text of every page, trimmed.
// Scanned pages come back as empty strings.
func (d *Document) PageTexts(ctx context.Context, path string) (texts []string, err error) {
	// ledongthuc/pdf panics on some damaged files
	defer func() {
		if rec := recover(); rec != nil {
			texts, err = nil, fmt.Errorf("failed to read text layer of %s: %v", path, rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	texts = make([]string, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			d.logger.Debug("page text unreadable", "file", path, "page", i, "error", err)
			continue
		}
		texts[i-1] = strings.TrimSpace(text)
	}
	return texts, nil
}

// RenderPage rasterises one page to PNG at the configured DPI.
func (d *Document) RenderPage(ctx context.Context, path string, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	return d.renderer.Render(ctx, path, page, d.dpi)
}
