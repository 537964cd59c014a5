// Package pagemap resolves textbook page numbers to pages of problem-set PDFs.
//
// A conformance key's map comes from its page_map.csv when present,
// otherwise it is inferred from page markers ("p.12", "ページ7") found in
// the text of each question PDF page. PDF pages are 1-based throughout.
package pagemap

import (
	"context"
	"encoding/json"
	"sort"
)

// Entry maps one textbook page to a page of a PDF file.
type Entry struct {
	TextbookPage int    `json:"textbook_page" yaml:"textbook_page"`
	PDFFile      string `json:"pdf_file" yaml:"pdf_file"`
	PDFPage      int    `json:"pdf_page" yaml:"pdf_page"`
}

// Map is an ordered collection of entries with at most one entry per textbook page.
type Map struct {
	entries []Entry
	index   map[int]int
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[int]int)}
}

// Set stores e, replacing any entry for the same textbook page in place.
// Returns the replaced entry, if any.
func (m *Map) Set(e Entry) (Entry, bool) {
	if i, ok := m.index[e.TextbookPage]; ok {
		prev := m.entries[i]
		m.entries[i] = e
		return prev, true
	}
	m.index[e.TextbookPage] = len(m.entries)
	m.entries = append(m.entries, e)
	return Entry{}, false
}

// Lookup returns the entry for a textbook page.
func (m *Map) Lookup(textbookPage int) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	i, ok := m.index[textbookPage]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// ForFile returns the entries pointing into the named PDF file.
func (m *Map) ForFile(name string) []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, e := range m.entries {
		if e.PDFFile == name {
			out = append(out, e)
		}
	}
	return out
}

// PagesFor returns the sorted, unique PDF pages of file that the given
// textbook pages map to.
func (m *Map) PagesFor(file string, textbookPages []int) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, tp := range textbookPages {
		e, ok := m.Lookup(tp)
		if !ok || e.PDFFile != file || seen[e.PDFPage] {
			continue
		}
		seen[e.PDFPage] = true
		pages = append(pages, e.PDFPage)
	}
	sort.Ints(pages)
	return pages
}

// MarshalJSON renders the map as its entry list.
func (m *Map) MarshalJSON() ([]byte, error) {
	entries := m.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// MarshalYAML renders the map as its entry list.
func (m *Map) MarshalYAML() (any, error) {
	return m.Entries(), nil
}

// Method records how a Resolution was produced.
type Method string

const (
	// MethodExplicit means the map was read from page_map.csv.
	MethodExplicit Method = "explicit"

	// MethodInferred means the map was built from page markers.
	MethodInferred Method = "inferred"

	// MethodNone means there was no table and OCR is disabled.
	MethodNone Method = "none"
)

// Resolution is the result of resolving one conformance key.
type Resolution struct {
	Key    string `json:"key" yaml:"key"`
	Method Method `json:"method" yaml:"method"`
	// Map covers the question PDFs.
	Map *Map `json:"map" yaml:"map"`
	// Answers covers the answer PDFs.
	Answers  *Map      `json:"answers" yaml:"answers"`
	Warnings []Warning `json:"-" yaml:"-"`
}

// Detector recognizes text in a rendered page image.
type Detector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// PageSource reads and renders PDF pages. Pages are 1-based.
type PageSource interface {
	PageCount(path string) (int, error)
	// PageTexts returns the embedded text layer, one string per page.
	PageTexts(ctx context.Context, path string) ([]string, error)
	RenderPage(ctx context.Context, path string, page int) ([]byte, error)
}

// DuplicatePolicy decides what a repeated textbook page in page_map.csv does.
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps the later row.
	DuplicateOverwrite DuplicatePolicy = "overwrite"

	// DuplicateError rejects the table.
	DuplicateError DuplicatePolicy = "error"
)

// MarkerPolicy decides which markers on one scanned page are recorded.
type MarkerPolicy string

const (
	// MarkerFirst records only the first marker in reading order. When that
	// marker is already mapped the page contributes nothing, even if its
	// later markers are new.
	MarkerFirst MarkerPolicy = "first"

	// MarkerAll records every marker on the page.
	MarkerAll MarkerPolicy = "all"
)
