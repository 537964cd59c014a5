package exam

import (
	"slices"
	"testing"
)

func TestParsePageRanges(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "30", []int{30}},
		{"range and list", "12-15, 20〜22, 30", []int{12, 13, 14, 15, 20, 21, 22, 30}},
		{"tilde", "5~7", []int{5, 6, 7}},
		{"full-width tilde and digits", "１０～１２", []int{10, 11, 12}},
		{"spaces around dash", "3 - 5", []int{3, 4, 5}},
		{"reversed range", "9-7", []int{7, 8, 9}},
		{"overlapping ranges", "1-3, 2-4, 3", []int{1, 2, 3, 4}},
		{"japanese separators", "p12、p14・16", []int{12, 14, 16}},
		{"four digit number ignored", "1234, 5", []int{5}},
		{"four digit range end ignored", "10-2000", []int{10}},
		{"zero dropped", "0, 2", []int{2}},
		{"chained dashes", "1-3-5", []int{1, 2, 3, 5}},
		{"no digits", "全部", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePageRanges(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParsePageRanges(%q) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSubjects(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"数学", []string{"数学"}},
		{"数学・英語", []string{"数学", "英語"}},
		{"数学/英語, 理科", []string{"数学", "英語", "理科"}},
		{"数学、英語，国語", []string{"数学", "英語", "国語"}},
		{" 数学  英語 ", []string{"数学", "英語"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSubjects(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeSubjects(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCountKeywordHits(t *testing.T) {
	text := "方程式を解け。式を計算せよ。一次関数と二次関数。"
	if got := CountKeywordHits(text, []string{"方程式", "式", "計算"}); got != 4 {
		t.Errorf("expected 4 hits, got %d", got)
	}
	if got := CountKeywordHits(text, []string{"関数", "一次関数"}); got != 3 {
		t.Errorf("expected 3 hits, got %d", got)
	}
	if got := CountKeywordHits("", []string{"式"}); got != 0 {
		t.Errorf("expected 0 hits for empty text, got %d", got)
	}
	if got := CountKeywordHits(text, []string{""}); got != 0 {
		t.Errorf("expected empty keyword to be ignored, got %d", got)
	}
}

func TestNumberTokens(t *testing.T) {
	tests := []struct {
		text      string
		maxDigits int
		want      []string
	}{
		{"(1) 3 + 4 = 7", 2, []string{"1", "3", "4", "7"}},
		{"問1 問2", 2, nil},
		{"100 points, 12 marks", 2, []string{"12"}},
		{"12a 34", 2, []string{"34"}},
		{"１２ 点", 2, []string{"１２"}},
		{"p.123", 3, []string{"123"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := numberTokens(tt.text, tt.maxDigits); !slices.Equal(got, tt.want) {
				t.Errorf("numberTokens(%q) = %q, expected %q", tt.text, got, tt.want)
			}
		})
	}
}
