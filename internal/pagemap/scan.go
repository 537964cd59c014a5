package pagemap

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// pageResult is the outcome of scanning one PDF page.
type pageResult struct {
	file    string
	page    int
	markers []int
	warning *PageScanWarning
}

// fileScan holds everything known about one file before its pages are scanned.
type fileScan struct {
	path    string
	name    string
	texts   []string // text layer, used when useText is set
	useText bool
	pages   int
	warning *PageScanWarning
}

// infer scans files in order and merges their markers into a Map.
// Pages run concurrently; the merge walks results in (file, page) order so
// the earliest-scanned page wins regardless of completion order.
func (r *Resolver) infer(ctx context.Context, log *slog.Logger, files []string) (*Map, []Warning, error) {
	m := NewMap()
	var warnings []Warning
	if len(files) == 0 {
		return m, nil, nil
	}

	scans := make([]*fileScan, len(files))
	total := 0
	for i, path := range files {
		scans[i] = r.prepareFile(ctx, log, path)
		total += scans[i].pages
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	results := make([]pageResult, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	slot := 0
	for _, fs := range scans {
		for page := 1; page <= fs.pages; page++ {
			i := slot
			slot++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = r.scanPage(gctx, fs, page)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	// Scan failures caused by the caller giving up are not page warnings.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	slot = 0
	for _, fs := range scans {
		if fs.warning != nil {
			warnings = append(warnings, fs.warning)
		}
		for page := 1; page <= fs.pages; page++ {
			res := results[slot]
			slot++

			if res.warning != nil {
				warnings = append(warnings, res.warning)
				continue
			}
			if len(res.markers) == 0 {
				warnings = append(warnings, &PageScanWarning{File: res.file, Page: res.page, Reason: "no page marker"})
				continue
			}

			markers := res.markers
			if r.cfg.MarkerPolicy != MarkerAll {
				markers = markers[:1]
			}
			for _, n := range markers {
				e := Entry{TextbookPage: n, PDFFile: res.file, PDFPage: res.page}
				if kept, ok := m.Lookup(n); ok {
					warnings = append(warnings, &DuplicateMappingWarning{TextbookPage: n, Kept: kept, Discarded: e})
					continue
				}
				m.Set(e)
			}
		}
	}

	return m, warnings, nil
}

// prepareFile counts a file's pages and decides between text layer and OCR.
func (r *Resolver) prepareFile(ctx context.Context, log *slog.Logger, path string) *fileScan {
	fs := &fileScan{path: path, name: filepath.Base(path)}

	texts, err := r.cfg.Source.PageTexts(ctx, path)
	if err != nil {
		log.Debug("text layer unavailable", "file", fs.name, "error", err)
		texts = nil
	}

	if len(texts) > 0 {
		fs.pages = len(texts)
	} else {
		n, err := r.cfg.Source.PageCount(path)
		if err != nil {
			fs.warning = &PageScanWarning{File: fs.name, Reason: "unreadable PDF", Err: err}
			return fs
		}
		fs.pages = n
	}

	if r.cfg.PreferTextLayer && TextCoverage(texts) >= r.cfg.MinTextRatio && len(texts) > 0 {
		fs.texts = texts
		fs.useText = true
	}
	log.Debug("scanning file", "file", fs.name, "pages", fs.pages, "text_layer", fs.useText)
	return fs
}

// scanPage obtains the text of one page and extracts its markers.
func (r *Resolver) scanPage(ctx context.Context, fs *fileScan, page int) pageResult {
	res := pageResult{file: fs.name, page: page}

	if fs.useText {
		res.markers = ExtractMarkers(fs.texts[page-1])
		return res
	}

	if r.cfg.Detector == nil {
		res.warning = &PageScanWarning{File: fs.name, Page: page, Reason: "OCR unavailable", Err: ErrNoDetector}
		return res
	}

	pctx := ctx
	if r.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, r.cfg.PageTimeout)
		defer cancel()
	}

	img, err := r.cfg.Source.RenderPage(pctx, fs.path, page)
	if err != nil {
		res.warning = &PageScanWarning{File: fs.name, Page: page, Reason: failureReason(pctx, "render failed"), Err: err}
		return res
	}

	text, err := r.cfg.Detector.DetectText(pctx, img)
	if err != nil {
		res.warning = &PageScanWarning{File: fs.name, Page: page, Reason: failureReason(pctx, "text detection failed"), Err: err}
		return res
	}

	res.markers = ExtractMarkers(text)
	return res
}

func failureReason(ctx context.Context, reason string) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "page timeout exceeded"
	}
	return reason
}

// TextCoverage is the share of pages with any embedded text.
func TextCoverage(texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	withText := 0
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			withText++
		}
	}
	return float64(withText) / float64(len(texts))
}
