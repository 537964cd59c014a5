//go:build !mupdf

package pdfdoc

import "fmt"

// NewMuPDF reports that MuPDF support was not compiled in.
// Build with -tags mupdf to enable it.
func NewMuPDF() (Renderer, error) {
	return nil, fmt.Errorf("mupdf: %w", ErrRendererUnavailable)
}
