package exam

import (
	"regexp"
	"strings"
	"unicode"
)

var subjectSeparators = regexp.MustCompile(`[・/,、，\s]+`)

// NormalizeSubjects splits "数学・英語" style subject lists.
func NormalizeSubjects(subjects string) []string {
	var out []string
	for _, s := range subjectSeparators.Split(subjects, -1) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CountKeywordHits counts non-overlapping occurrences of every keyword in text.
func CountKeywordHits(text string, keywords []string) int {
	if text == "" {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if k == "" {
			continue
		}
		hits += strings.Count(text, k)
	}
	return hits
}

// numberTokens returns the words of text made only of digits, at most
// maxDigits long. Letters of any script join a word, so "問1" holds none.
func numberTokens(text string, maxDigits int) []string {
	var tokens []string
	rs := []rune(text)
	for i := 0; i < len(rs); {
		if !isWordRune(rs[i]) {
			i++
			continue
		}
		j := i
		allDigits := true
		for j < len(rs) && isWordRune(rs[j]) {
			if !unicode.IsDigit(rs[j]) {
				allDigits = false
			}
			j++
		}
		if allDigits && j-i <= maxDigits {
			tokens = append(tokens, string(rs[i:j]))
		}
		i = j
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
