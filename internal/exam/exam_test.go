package exam

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/pagemap"
	"github.com/jackzampolin/mockexam/internal/pdfdoc"
	"github.com/jackzampolin/mockexam/internal/testutil"
)

// textSource serves page counts from real PDFs and page text from memory.
// RenderPage returns the OCR text of the page as the image bytes, so
// echoDetector reads it back.
type textSource struct {
	textLayer map[string][]string // keyed by file name
	ocr       map[string][]string
	renders   atomic.Int32
}

func (s *textSource) PageCount(path string) (int, error) {
	return pdfdoc.PageCount(path)
}

func (s *textSource) PageTexts(ctx context.Context, path string) ([]string, error) {
	if texts, ok := s.textLayer[filepath.Base(path)]; ok {
		return append([]string(nil), texts...), nil
	}
	return nil, nil
}

func (s *textSource) RenderPage(ctx context.Context, path string, page int) ([]byte, error) {
	s.renders.Add(1)
	texts := s.ocr[filepath.Base(path)]
	if page < 1 || page > len(texts) {
		return nil, errors.New("page out of range")
	}
	return []byte(texts[page-1]), nil
}

type echoDetector struct{}

func (echoDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	return string(image), nil
}

type stubResolver struct {
	res   *pagemap.Resolution
	err   error
	calls int
}

func (r *stubResolver) Resolve(ctx context.Context, key string) (*pagemap.Resolution, error) {
	r.calls++
	return r.res, r.err
}

type fixture struct {
	layout *library.Layout
	root   string
	source *textSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lc := testutil.LibraryConfig(t)
	return &fixture{
		layout: library.New(lc),
		root:   filepath.Dir(lc.PastTestsDB),
		source: &textSource{textLayer: map[string][]string{}, ocr: map[string][]string{}},
	}
}

// addPDF writes a PDF with one page per text at rel under the library root
// and registers texts as its text layer.
func (f *fixture) addPDF(t *testing.T, rel string, texts []string) string {
	t.Helper()
	path := filepath.Join(f.root, rel)
	pages := make([]string, len(texts))
	for i := range pages {
		pages[i] = "page"
	}
	testutil.WritePDF(t, path, pages)
	f.source.textLayer[filepath.Base(path)] = texts
	return path
}

func (f *fixture) service(t *testing.T, resolver Resolver, mutate func(*Config)) *Service {
	t.Helper()
	cfg := Config{
		Layout:          f.layout,
		Resolver:        resolver,
		Source:          f.source,
		PreferTextLayer: true,
		MinTextRatio:    0.4,
		Workers:         2,
		Logger:          testutil.Logger(),
		Now:             func() time.Time { return time.Date(2026, 3, 1, 9, 30, 5, 0, time.UTC) },
		NewID:           func() string { return "0a1b2c3d-4e5f-6789-abcd-ef0123456789" },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc
}

func TestNew_Validation(t *testing.T) {
	layout := testutil.Library(t)
	source := &textSource{}
	resolver := &stubResolver{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no layout", Config{Resolver: resolver, Source: source}},
		{"no resolver", Config{Layout: layout, Source: source}},
		{"no source", Config{Layout: layout, Resolver: resolver}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := New(Config{Layout: layout, Resolver: resolver, Source: source}); err != nil {
		t.Errorf("expected minimal config to succeed, got %v", err)
	}
}

func TestTextReader_OCRFallback(t *testing.T) {
	f := newFixture(t)
	path := f.addPDF(t, "scan.pdf", []string{"", "", "", "header"})
	f.source.ocr["scan.pdf"] = []string{"p.1 方程式", "p.2", "", "p.4"}

	t.Run("low coverage runs OCR", func(t *testing.T) {
		svc := f.service(t, &stubResolver{}, func(c *Config) {
			c.OCREnabled = true
			c.Detector = echoDetector{}
		})
		texts, err := svc.texts.pageTexts(context.Background(), path)
		if err != nil {
			t.Fatalf("pageTexts failed: %v", err)
		}
		want := []string{"p.1 方程式", "p.2", "", "p.4"}
		for i := range want {
			if texts[i] != want[i] {
				t.Errorf("page %d: expected %q, got %q", i+1, want[i], texts[i])
			}
		}
	})

	t.Run("OCR disabled keeps text layer", func(t *testing.T) {
		f.source.renders.Store(0)
		svc := f.service(t, &stubResolver{}, func(c *Config) {
			c.Detector = echoDetector{}
		})
		texts, err := svc.texts.pageTexts(context.Background(), path)
		if err != nil {
			t.Fatalf("pageTexts failed: %v", err)
		}
		if texts[3] != "header" || texts[0] != "" {
			t.Errorf("expected text layer, got %q", texts)
		}
		if n := f.source.renders.Load(); n != 0 {
			t.Errorf("expected no renders, got %d", n)
		}
	})

	t.Run("enough coverage skips OCR", func(t *testing.T) {
		f.source.renders.Store(0)
		svc := f.service(t, &stubResolver{}, func(c *Config) {
			c.OCREnabled = true
			c.Detector = echoDetector{}
			c.MinTextRatio = 0.25
		})
		if _, err := svc.texts.pageTexts(context.Background(), path); err != nil {
			t.Fatalf("pageTexts failed: %v", err)
		}
		if n := f.source.renders.Load(); n != 0 {
			t.Errorf("expected no renders, got %d", n)
		}
	})
}

func TestTextReader_Unreadable(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.root, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := f.service(t, &stubResolver{}, nil)
	if _, err := svc.texts.pageTexts(context.Background(), path); err == nil {
		t.Error("expected error for unreadable PDF")
	}
}
