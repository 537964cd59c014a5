package exam

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackzampolin/mockexam/internal/pagemap"
)

// maxPageDigits bounds page numbers to 1-999.
const maxPageDigits = 3

var rangeDashes = strings.NewReplacer("〜", "-", "~", "-", "–", "-", "—", "-", "−", "-")

// ParsePageRanges parses textbook page ranges such as "12-15, 20〜22, 30".
// Reversed ranges are swapped, numbers longer than three digits are
// ignored, and the result is sorted without repeats.
func ParsePageRanges(text string) []int {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	normalized := rangeDashes.Replace(pagemap.NormalizeText(text))

	type run struct {
		start, end int // rune offsets
		n          int
		ok         bool
	}
	var runs []run
	rs := []rune(normalized)
	for i := 0; i < len(rs); {
		if !isASCIIDigit(rs[i]) {
			i++
			continue
		}
		j := i
		for j < len(rs) && isASCIIDigit(rs[j]) {
			j++
		}
		r := run{start: i, end: j}
		if j-i <= maxPageDigits {
			r.n, _ = strconv.Atoi(string(rs[i:j]))
			r.ok = true
		}
		runs = append(runs, r)
		i = j
	}

	pages := make(map[int]bool)
	for i := 0; i < len(runs); i++ {
		cur := runs[i]
		if cur.ok && cur.n > 0 {
			pages[cur.n] = true
		}
		if i+1 < len(runs) && cur.ok && runs[i+1].ok && joinedByDash(rs[cur.end:runs[i+1].start]) {
			lo, hi := cur.n, runs[i+1].n
			if lo > hi {
				lo, hi = hi, lo
			}
			for p := lo; p <= hi; p++ {
				if p > 0 {
					pages[p] = true
				}
			}
			i++ // the range end is consumed
		}
	}

	out := make([]int, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func joinedByDash(between []rune) bool {
	s := strings.TrimFunc(string(between), unicode.IsSpace)
	return s == "-"
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
