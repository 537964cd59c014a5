//go:build mupdf

package pdfdoc

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// MuPDF renders pages in-process with MuPDF.
type MuPDF struct {
	// MuPDF contexts are not shared between goroutines.
	mu sync.Mutex
}

// NewMuPDF creates an in-process MuPDF renderer.
func NewMuPDF() (Renderer, error) {
	return &MuPDF{}, nil
}

// Render renders one page to PNG.
func (m *MuPDF) Render(ctx context.Context, path string, page, dpi int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", page, doc.NumPage())
	}

	data, err := doc.ImagePNG(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("mupdf render failed: %w", err)
	}
	return data, nil
}
