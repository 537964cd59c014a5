package ocr

import "log/slog"

// GosseractName identifies the in-process tesseract engine.
const GosseractName = "gosseract"

// GosseractConfig configures the in-process tesseract engine.
type GosseractConfig struct {
	Languages string // tesseract syntax, e.g. "jpn+eng"
	Logger    *slog.Logger
}
