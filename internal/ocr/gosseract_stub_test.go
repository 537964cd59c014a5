//go:build !gosseract

package ocr

import (
	"errors"
	"testing"

	"github.com/jackzampolin/mockexam/internal/config"
)

func TestGosseract_NotCompiledIn(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OCR.Engine = GosseractName

	_, err := New(cfg, Options{})
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}
