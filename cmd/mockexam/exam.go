package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/mockexam/internal/exam"
	"github.com/jackzampolin/mockexam/internal/output"
	"github.com/jackzampolin/mockexam/internal/svcctx"
)

var generateReq exam.GenerateRequest

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate question and answer PDFs for a textbook range",
	Long: `Generate selects the pages of a problem set that cover the requested
textbook pages and writes them to the output directory as
<school>_<grade>_<term>_<conformance>_<timestamp>_<id>_questions.pdf and
..._answers.pdf.

Examples:
  mockexam generate --school 第一中 --grade 2年 --term 前期 --conformance 東京書籍 --range "12-15, 20〜22"
  mockexam generate --conformance 東京書籍 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc := svcctx.ExamFrom(ctx)
		if svc == nil {
			return fmt.Errorf("exam service not initialized")
		}

		res, err := svc.Generate(ctx, generateReq)
		if err != nil {
			if exam.IsNotFound(err) {
				return fmt.Errorf("%w (looked under %s)", err, svcctx.LayoutFrom(ctx).ProblemSetsPath())
			}
			return err
		}

		return output.Write(cmd.OutOrStdout(), svcctx.OutputFrom(ctx), struct {
			Result   *exam.GenerateResult `json:"result" yaml:"result"`
			Warnings []output.Warning     `json:"warnings" yaml:"warnings"`
		}{res, output.Warnings(res.Warnings)})
	},
}

var analyzeReq exam.AnalyzeRequest

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate topic ratios and difficulty from past tests",
	Long: `Analyze reads the past tests of a school and grade (optionally one term)
and reports subject topic ratios and a basic/standard/advanced split.

Examples:
  mockexam analyze --school 第一中 --grade 2年 --term 前期 --subjects 数学・英語`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc := svcctx.ExamFrom(ctx)
		if svc == nil {
			return fmt.Errorf("exam service not initialized")
		}

		res, err := svc.Analyze(ctx, analyzeReq)
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), svcctx.OutputFrom(ctx), res)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateReq.School, "school", "", "school name")
	f.StringVar(&generateReq.Grade, "grade", "", "grade")
	f.StringVar(&generateReq.Term, "term", "", "term, e.g. 前期")
	f.StringVar(&generateReq.Conformance, "conformance", "", "problem set conformance key (準拠)")
	f.StringVar(&generateReq.Range, "range", "", `textbook pages, e.g. "12-15, 20〜22" (default: every page)`)
	_ = generateCmd.MarkFlagRequired("conformance")

	f = analyzeCmd.Flags()
	f.StringVar(&analyzeReq.School, "school", "", "school name")
	f.StringVar(&analyzeReq.Grade, "grade", "", "grade")
	f.StringVar(&analyzeReq.Term, "term", "", "term filter (file name substring)")
	f.StringVar(&analyzeReq.Subjects, "subjects", "", "subjects, e.g. 数学・英語")
}
