// Package ocr provides text recognition engines for rendered PDF pages.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackzampolin/mockexam/internal/config"
)

// ErrEngineUnavailable is returned when an engine cannot run in this
// environment (missing executable or not compiled in).
var ErrEngineUnavailable = errors.New("OCR engine unavailable")

// Engine recognizes the text in a PNG page image.
type Engine interface {
	Name() string
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Options carries dependencies that do not come from the config file.
type Options struct {
	Logger *slog.Logger
	// HTTPClient overrides the client used by network engines (tests).
	HTTPClient *http.Client
}

// New builds the engine selected by cfg.OCR.Engine.
func New(cfg *config.Config, opts Options) (Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ocr", "engine", cfg.OCR.Engine)

	switch cfg.OCR.Engine {
	case "", TesseractName:
		return NewTesseract(TesseractConfig{
			Command:    cfg.OCR.TesseractCmd,
			Languages:  cfg.OCR.Languages,
			DPI:        cfg.OCR.DPI,
			MaxRetries: cfg.OCR.MaxRetries,
			Logger:     logger,
		}), nil
	case GosseractName:
		return NewGosseract(GosseractConfig{
			Languages: cfg.OCR.Languages,
			Logger:    logger,
		})
	case OpenAIName:
		key := cfg.OpenAIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: openai engine needs ocr.openai.api_key", ErrEngineUnavailable)
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:     key,
			Model:      cfg.OCR.OpenAI.Model,
			BaseURL:    cfg.OCR.OpenAI.BaseURL,
			Languages:  cfg.OCR.Languages,
			MaxRetries: cfg.OCR.MaxRetries,
			Timeout:    cfg.OCR.PageTimeout,
			HTTPClient: opts.HTTPClient,
			Logger:     logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCR.Engine)
	}
}

const defaultRetryDelay = 500 * time.Millisecond
