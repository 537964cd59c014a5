package exam

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
)

func TestBuildRatio(t *testing.T) {
	text := "方程式 2x+3=7 を解け。\n関数 y=2x の比例。図形の面積と角。"

	t.Run("math", func(t *testing.T) {
		got := BuildRatio(text, []string{"数学"})
		want := []Ratio{{"数と式", 29}, {"関数", 29}, {"図形", 43}, {"確率・資料", 0}}
		if !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("english without hits splits evenly", func(t *testing.T) {
		got := BuildRatio(text, []string{"英語"})
		want := []Ratio{{"文法", 25}, {"読解", 25}, {"英作文", 25}, {"リスニング", 25}}
		if !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("math then english regardless of request order", func(t *testing.T) {
		got := BuildRatio(text, []string{"英語", "数学"})
		if len(got) != 8 {
			t.Fatalf("expected 8 ratios, got %d", len(got))
		}
		if got[0].Label != "数と式" || got[4].Label != "文法" {
			t.Errorf("unexpected order: %v", got)
		}
	})

	t.Run("no recognized subject", func(t *testing.T) {
		for _, subjects := range [][]string{nil, {"理科"}} {
			if got := BuildRatio(text, subjects); !slices.Equal(got, defaultRatio) {
				t.Errorf("subjects %q: expected default ratio, got %v", subjects, got)
			}
		}
	})
}

func TestNormalizeRatio_RoundsHalfToEven(t *testing.T) {
	got := normalizeRatio(subjectBuckets["数学"], []int{1, 1, 3, 3})
	want := []Ratio{{"数と式", 12}, {"関数", 12}, {"図形", 38}, {"確率・資料", 38}}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildDifficulty(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [3]string
	}{
		{
			name: "no text",
			text: "",
			want: [3]string{"0%（短答中心）", "60%（記述・応用）", "40%（融合・長文）"},
		},
		{
			name: "short answers only",
			text: "(1) 3 (2) 12",
			want: [3]string{"100%（短答中心）", "0%（記述・応用）", "0%（融合・長文）"},
		},
		{
			name: "mixed",
			text: "方程式 2x+3=7 を解け。(1) 3 (2) 12\n理由を説明せよ。",
			want: [3]string{"75%（短答中心）", "15%（記述・応用）", "10%（融合・長文）"},
		},
		{
			name: "long answers only",
			text: "証明せよ。英文で記述せよ。",
			want: [3]string{"0%（短答中心）", "60%（記述・応用）", "40%（融合・長文）"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDifficulty(tt.text)
			if len(got) != 3 {
				t.Fatalf("expected 3 levels, got %d", len(got))
			}
			levels := [3]string{"基礎", "標準", "応用"}
			for i := range got {
				if got[i].Level != levels[i] {
					t.Errorf("level %d: expected %s, got %s", i, levels[i], got[i].Level)
				}
				if got[i].Detail != tt.want[i] {
					t.Errorf("level %s: expected %q, got %q", levels[i], tt.want[i], got[i].Detail)
				}
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join("past_tests_db", "第一中", "2年")
	f.addPDF(t, filepath.Join(dir, "2024_前期.pdf"), []string{"方程式 2x+3=7 を解け。(1) 3 (2) 12", "理由を説明せよ。"})
	f.addPDF(t, filepath.Join(dir, "2024_後期.pdf"), []string{"関数 関数 関数"})

	svc := f.service(t, &stubResolver{}, nil)

	t.Run("term filter", func(t *testing.T) {
		res, err := svc.Analyze(context.Background(), AnalyzeRequest{
			School: "第一中", Grade: "2年", Term: "前期", Subjects: "数学",
		})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(res.Sources) != 1 || filepath.Base(res.Sources[0]) != "2024_前期.pdf" {
			t.Errorf("expected only the 前期 test, got %v", res.Sources)
		}
		if res.OCRStatus != OCRStatusDone {
			t.Errorf("expected %s, got %s", OCRStatusDone, res.OCRStatus)
		}
		if res.Difficulty[0].Detail != "75%（短答中心）" {
			t.Errorf("unexpected difficulty %v", res.Difficulty)
		}
		// 方程式 counts for both 方程式 and 式.
		if res.Ratio[0] != (Ratio{"数と式", 100}) {
			t.Errorf("unexpected ratio %v", res.Ratio)
		}
	})

	t.Run("all terms", func(t *testing.T) {
		res, err := svc.Analyze(context.Background(), AnalyzeRequest{
			School: "第一中", Grade: "2年", Subjects: "数学・英語",
		})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(res.Sources) != 2 {
			t.Errorf("expected 2 sources, got %v", res.Sources)
		}
		if len(res.Ratio) != 8 {
			t.Errorf("expected 8 ratios, got %v", res.Ratio)
		}
		if res.Ratio[1] != (Ratio{"関数", 60}) {
			t.Errorf("expected 関数 at 60%%, got %v", res.Ratio[1])
		}
	})

	t.Run("no past tests", func(t *testing.T) {
		res, err := svc.Analyze(context.Background(), AnalyzeRequest{School: "第二中", Grade: "1年"})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if res.OCRStatus != OCRStatusSkipped {
			t.Errorf("expected %s, got %s", OCRStatusSkipped, res.OCRStatus)
		}
		if !slices.Equal(res.Ratio, defaultRatio) {
			t.Errorf("expected default ratio, got %v", res.Ratio)
		}
		if res.Sources == nil {
			t.Error("expected empty, non-nil sources")
		}
	})

	t.Run("missing school", func(t *testing.T) {
		res, err := svc.Analyze(context.Background(), AnalyzeRequest{Grade: "2年"})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(res.Sources) != 0 {
			t.Errorf("expected no sources, got %v", res.Sources)
		}
	})
}
