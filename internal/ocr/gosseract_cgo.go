//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract runs libtesseract in-process through cgo.
type Gosseract struct {
	languages []string
	logger    *slog.Logger
}

// NewGosseract creates an in-process engine.
func NewGosseract(cfg GosseractConfig) (Engine, error) {
	langs := strings.Split(cfg.Languages, "+")
	if cfg.Languages == "" {
		langs = []string{"jpn", "eng"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gosseract{languages: langs, logger: logger}, nil
}

// Name returns the engine identifier.
func (g *Gosseract) Name() string {
	return GosseractName
}

// DetectText recognizes the text of one page image.
// A client is created per call because gosseract clients are not safe for
// concurrent use.
func (g *Gosseract) DetectText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.languages...); err != nil {
		return "", fmt.Errorf("gosseract set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("gosseract set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}
