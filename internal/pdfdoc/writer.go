package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Selection is a set of pages taken from one source PDF, in output order.
type Selection struct {
	Path  string
	Pages []int // 1-based
}

// ErrEmptySelection is returned by WriteSelections when no pages are selected.
var ErrEmptySelection = errors.New("no pages selected")

// WriteSelections assembles the selected pages of several PDFs into out.
// Each selection is collected into a temporary file, then all parts are merged.
func WriteSelections(selections []Selection, out string) error {
	var parts []Selection
	for _, s := range selections {
		if len(s.Pages) > 0 {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ErrEmptySelection
	}

	tmpDir, err := os.MkdirTemp("", "mockexam-collect-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var collected []string
	for i, s := range parts {
		part := filepath.Join(tmpDir, fmt.Sprintf("part_%04d.pdf", i))
		if err := CollectPages(s.Path, s.Pages, part); err != nil {
			return err
		}
		collected = append(collected, part)
	}

	if len(collected) == 1 {
		return copyFile(collected[0], out)
	}
	if err := api.MergeCreateFile(collected, out, false, nil); err != nil {
		return fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return nil
}

// CollectPages writes the given pages of src, in order, to out.
func CollectPages(src string, pages []int, out string) error {
	selected := make([]string, len(pages))
	for i, p := range pages {
		if p < 1 {
			return fmt.Errorf("invalid page %d", p)
		}
		selected[i] = strconv.Itoa(p)
	}
	if err := api.CollectFile(src, out, selected, nil); err != nil {
		return fmt.Errorf("failed to collect pages from %s: %w", filepath.Base(src), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
