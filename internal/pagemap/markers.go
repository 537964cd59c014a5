package pagemap

import (
	"regexp"
	"strconv"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// markerPattern matches "p.12", "P 12", "pp.12" and "ページ12".
var markerPattern = regexp.MustCompile(`(?i)(?:\bpp?\.?\s*|ページ\s*)(\d+)`)

// NormalizeText folds full-width and half-width forms to their canonical
// width and composes combining marks, so "ｐ．１２" reads "p.12" and
// "ﾍﾟｰｼﾞ７" reads "ページ7".
func NormalizeText(text string) string {
	return norm.NFC.String(width.Fold.String(text))
}

// ExtractMarkers returns the textbook page numbers referenced in text,
// in reading order, without repeats.
func ExtractMarkers(text string) []int {
	if text == "" {
		return nil
	}

	var pages []int
	seen := make(map[int]bool)
	for _, m := range markerPattern.FindAllStringSubmatch(NormalizeText(text), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		pages = append(pages, n)
	}
	return pages
}
