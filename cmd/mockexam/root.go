package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/home"
	"github.com/jackzampolin/mockexam/internal/output"
	"github.com/jackzampolin/mockexam/internal/svcctx"
	"github.com/jackzampolin/mockexam/internal/version"
)

// skipServices marks commands that run without loading the library.
const skipServices = "skip-services"

var (
	cfgFile      string
	homeDir      string
	logLevel     string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mockexam",
	Short: "Assemble mock exam PDFs from past tests and problem sets",
	Long: `mockexam builds mock exams from a local library of PDFs.

The library is laid out as:
  past_tests_db/<school>/<grade>/<year>_<term>.pdf
  problem_sets/<conformance>/questions/*.pdf
  problem_sets/<conformance>/answers/*.pdf
  problem_sets/<conformance>/page_map.csv   (optional)

Textbook pages are mapped to PDF pages through page_map.csv when present,
otherwise by reading page markers (p.12, ページ12) with OCR.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		logger, err := newLogger(logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		if cmd.Annotations[skipServices] != "" {
			cmd.SetContext(svcctx.WithServices(cmd.Context(), &svcctx.Services{Logger: logger, Output: format}))
			return nil
		}

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		cm, err := config.NewManager(h.ConfigFile(cfgFile))
		if err != nil {
			return err
		}
		svcs, err := buildServices(cm.Get(), logger)
		if err != nil {
			return err
		}
		svcs.Config = cm
		svcs.Output = format
		if used := cm.ConfigFileUsed(); used != "" {
			logger.Debug("config loaded", "file", used)
		}

		cmd.SetContext(svcctx.WithServices(cmd.Context(), svcs))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.mockexam/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "mockexam home directory (default: ~/.mockexam)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pagemapCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
