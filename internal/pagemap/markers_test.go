package pagemap

import (
	"reflect"
	"testing"
)

func TestExtractMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"empty", "", nil},
		{"p dot", "問題 p.12 を解け", []int{12}},
		{"upper case with space", "P. 34", []int{34}},
		{"no dot", "p7", []int{7}},
		{"pp range start", "pp.20-21", []int{20}},
		{"katakana", "教科書ページ7", []int{7}},
		{"katakana with space", "ページ 15", []int{15}},
		{"reading order", "ページ9 ... p.3 ... p.9", []int{9, 3}},
		{"full width", "ｐ．１２", []int{12}},
		{"half width katakana", "ﾍﾟｰｼﾞ７", []int{7}},
		{"word inside", "step 3 and map 4", nil},
		{"no marker", "第2問 次の式を計算しなさい", nil},
		{"zero ignored", "p.0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMarkers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractMarkers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMap(t *testing.T) {
	m := NewMap()
	m.Set(Entry{TextbookPage: 5, PDFFile: "a.pdf", PDFPage: 2})
	m.Set(Entry{TextbookPage: 3, PDFFile: "b.pdf", PDFPage: 1})
	m.Set(Entry{TextbookPage: 7, PDFFile: "a.pdf", PDFPage: 2})

	prev, replaced := m.Set(Entry{TextbookPage: 5, PDFFile: "a.pdf", PDFPage: 9})
	if !replaced || prev.PDFPage != 2 {
		t.Errorf("expected replaced entry with page 2, got %+v, %v", prev, replaced)
	}

	entries := m.Entries()
	if entries[0].TextbookPage != 5 || entries[0].PDFPage != 9 {
		t.Errorf("overwrite should keep insertion position, got %+v", entries)
	}
	if m.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", m.Len())
	}
	if got := len(m.ForFile("a.pdf")); got != 2 {
		t.Errorf("expected 2 entries for a.pdf, got %d", got)
	}
	if got := m.PagesFor("a.pdf", []int{7, 5, 3, 100}); !reflect.DeepEqual(got, []int{2, 9}) {
		t.Errorf("PagesFor = %v, want [2 9]", got)
	}

	var nilMap *Map
	if nilMap.Len() != 0 {
		t.Error("nil map should be empty")
	}
	if _, ok := nilMap.Lookup(1); ok {
		t.Error("nil map lookup should miss")
	}
}
