//go:build !gosseract

package ocr

import "fmt"

// NewGosseract reports that libtesseract support was not compiled in.
// Build with -tags gosseract to enable it.
func NewGosseract(cfg GosseractConfig) (Engine, error) {
	return nil, fmt.Errorf("%w: gosseract requires building with -tags gosseract", ErrEngineUnavailable)
}
