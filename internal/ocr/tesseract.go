package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// TesseractName identifies the tesseract CLI engine.
const TesseractName = "tesseract"

// TesseractConfig configures the tesseract CLI engine.
type TesseractConfig struct {
	Command    string // default "tesseract"
	Languages  string // e.g. "jpn+eng"
	DPI        int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Tesseract runs the tesseract executable, feeding the image on stdin.
type Tesseract struct {
	cmd        string
	languages  string
	dpi        int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewTesseract creates a tesseract CLI engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Command == "" {
		cfg.Command = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "jpn+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{
		cmd:        cfg.Command,
		languages:  cfg.Languages,
		dpi:        cfg.DPI,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Name returns the engine identifier.
func (t *Tesseract) Name() string {
	return TesseractName
}

// DetectText recognizes the text of one page image.
// A missing executable fails immediately with ErrEngineUnavailable; other
// failures are retried up to MaxRetries times.
func (t *Tesseract) DetectText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}

	var text string
	err := retry.Do(
		func() error {
			out, err := t.run(ctx, image)
			if err != nil {
				return err
			}
			text = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(t.maxRetries+1)),
		retry.Delay(t.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			t.logger.Debug("tesseract retry", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (t *Tesseract) run(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.cmd,
		"stdin", "stdout",
		"-l", t.languages,
		"--dpi", strconv.Itoa(t.dpi),
	)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", retry.Unrecoverable(fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, t.cmd, err))
		}
		if ctx.Err() != nil {
			return "", retry.Unrecoverable(ctx.Err())
		}
		return "", fmt.Errorf("tesseract failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
