package pagemap

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var tableColumns = []string{"textbook_page", "pdf_file", "pdf_page"}

// TableOptions controls how page_map.csv is parsed.
type TableOptions struct {
	// Path is used in error messages only.
	Path            string
	DuplicatePolicy DuplicatePolicy
	// IsAnswer routes rows to the answer side. Nil sends every row to the question side.
	IsAnswer func(pdfFile string) bool
	// IsQuestion keeps an answer row on the question side as well, for
	// files whose name appears in both folders.
	IsQuestion func(pdfFile string) bool
}

// sides returns the maps a row for pdfFile belongs to.
func (o TableOptions) sides(t *Table, pdfFile string) []*Map {
	if o.IsAnswer == nil || !o.IsAnswer(pdfFile) {
		return []*Map{t.Questions}
	}
	if o.IsQuestion != nil && o.IsQuestion(pdfFile) {
		return []*Map{t.Questions, t.Answers}
	}
	return []*Map{t.Answers}
}

// Table is a parsed page_map.csv.
type Table struct {
	Questions *Map
	Answers   *Map
	// Warnings lists rows replaced under the overwrite policy.
	Warnings []Warning
}

// LoadTable opens and parses a page_map.csv file.
func LoadTable(path string, opts TableOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page map: %w", err)
	}
	defer f.Close()

	if opts.Path == "" {
		opts.Path = path
	}
	return ParseTable(f, opts)
}

// ParseTable reads a page map with header textbook_page,pdf_file,pdf_page.
// Columns may come in any order and extra columns are ignored.
// Any bad row fails the whole table with a *MalformedMappingError.
func ParseTable(r io.Reader, opts TableOptions) (*Table, error) {
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = DuplicateOverwrite
	}
	malformed := func(row int, field, reason string, err error) error {
		return &MalformedMappingError{Path: opts.Path, Row: row, Field: field, Reason: reason, Err: err}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page map: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed(1, "", "missing header", nil)
		}
		return nil, malformed(1, "", "unreadable header", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range tableColumns {
		if _, ok := cols[c]; !ok {
			return nil, malformed(1, c, "missing column", nil)
		}
	}

	t := &Table{Questions: NewMap(), Answers: NewMap()}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, malformed(line, "", "unreadable row", err)
		}
		line, _ := cr.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		textbookPage, err := parsePage(field("textbook_page"))
		if err != nil {
			return nil, malformed(line, "textbook_page", err.Error(), nil)
		}
		pdfFile := field("pdf_file")
		if pdfFile == "" {
			return nil, malformed(line, "pdf_file", "missing file reference", nil)
		}
		pdfPage, err := parsePage(field("pdf_page"))
		if err != nil {
			return nil, malformed(line, "pdf_page", err.Error(), nil)
		}

		e := Entry{TextbookPage: textbookPage, PDFFile: pdfFile, PDFPage: pdfPage}
		for _, target := range opts.sides(t, pdfFile) {
			if prev, ok := target.Lookup(textbookPage); ok {
				if opts.DuplicatePolicy == DuplicateError {
					return nil, malformed(line, "textbook_page",
						fmt.Sprintf("duplicate textbook page %d", textbookPage), nil)
				}
				t.Warnings = append(t.Warnings, &DuplicateMappingWarning{
					TextbookPage: textbookPage,
					Kept:         e,
					Discarded:    prev,
				})
			}
			target.Set(e)
		}
	}

	return t, nil
}

func parsePage(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty page number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric page %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("page %d is not positive", n)
	}
	return n, nil
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
