package library

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var numberSuffix = regexp.MustCompile(`^(.*?)(\d+)\.pdf$`)

// SortPDFsByNumber sorts PDF paths so numbered parts follow their numeric order.
// e.g., ["text10.pdf", "text2.pdf", "text1.pdf"] -> ["text1.pdf", "text2.pdf", "text10.pdf"]
// Files with the same stem sort unnumbered first, then by number.
// Different stems sort alphabetically.
func SortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		si, ni, oki := splitNumber(sorted[i])
		sj, nj, okj := splitNumber(sorted[j])

		if si != sj {
			return si < sj
		}

		// If both have numbers, sort numerically
		if oki && okj {
			if ni != nj {
				return ni < nj
			}
			return sorted[i] < sorted[j]
		}

		// Files without numbers come first
		if oki {
			return false
		}
		if okj {
			return true
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}

// splitNumber returns a file's stem without its numeric suffix and separator.
func splitNumber(path string) (string, int, bool) {
	base := strings.ToLower(filepath.Base(path))
	m := numberSuffix.FindStringSubmatch(base)
	if m == nil {
		return strings.TrimSuffix(base, ".pdf"), 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return strings.TrimSuffix(base, ".pdf"), 0, false
	}
	return strings.TrimRight(m[1], "-_ "), n, true
}
