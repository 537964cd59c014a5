package pagemap

import (
	"errors"
	"fmt"
)

// ErrNoDetector is reported for pages that need OCR when no engine is configured.
var ErrNoDetector = errors.New("no text detector configured")

// MalformedMappingError reports a page_map.csv row that cannot be used.
// It aborts resolution and no partial map is returned.
type MalformedMappingError struct {
	Path   string
	Row    int // 1-based line number, the header is row 1
	Field  string
	Reason string
	Err    error
}

func (e *MalformedMappingError) Error() string {
	msg := "malformed page map"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Field != "" {
		msg += " field " + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedMappingError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal problem recorded during resolution.
type Warning interface {
	Kind() string
	String() string
}

// PageScanWarning records a page that could not be scanned or carried no marker.
type PageScanWarning struct {
	File   string
	Page   int // 0 when the whole file failed
	Reason string
	Err    error
}

func (w *PageScanWarning) Kind() string { return "page_scan" }

func (w *PageScanWarning) String() string {
	loc := w.File
	if w.Page > 0 {
		loc = fmt.Sprintf("%s page %d", w.File, w.Page)
	}
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, w.Reason, w.Err)
	}
	return fmt.Sprintf("%s: %s", loc, w.Reason)
}

// DuplicateMappingWarning records a textbook page seen more than once.
type DuplicateMappingWarning struct {
	TextbookPage int
	Kept         Entry
	Discarded    Entry
}

func (w *DuplicateMappingWarning) Kind() string { return "duplicate_mapping" }

func (w *DuplicateMappingWarning) String() string {
	return fmt.Sprintf("textbook page %d: kept %s page %d, discarded %s page %d",
		w.TextbookPage, w.Kept.PDFFile, w.Kept.PDFPage, w.Discarded.PDFFile, w.Discarded.PDFPage)
}
