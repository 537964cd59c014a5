package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// ErrRendererUnavailable is returned when a renderer was not compiled in.
var ErrRendererUnavailable = errors.New("renderer not available in this build")

// Renderer rasterises a PDF page to PNG bytes.
type Renderer interface {
	Render(ctx context.Context, path string, page, dpi int) ([]byte, error)
}

// Pdftoppm renders pages with pdftoppm (poppler-utils).
type Pdftoppm struct {
	cmd string
}

// NewPdftoppm creates a renderer using the given executable.
func NewPdftoppm(cmd string) *Pdftoppm {
	if cmd == "" {
		cmd = "pdftoppm"
	}
	return &Pdftoppm{cmd: cmd}
}

// Render renders a single page from a PDF using pdftoppm.
func (p *Pdftoppm) Render(ctx context.Context, path string, page, dpi int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "mockexam-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -f/-l select a single page, -singlefile drops the page number suffix
	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.cmd,
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		path,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pdftoppm interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	// pdftoppm with -singlefile creates: <prefix>.png
	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
