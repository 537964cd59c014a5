// Package svcctx provides service context for dependency injection via context.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/exam"
	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/output"
	"github.com/jackzampolin/mockexam/internal/pagemap"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config   *config.Manager
	Layout   *library.Layout
	Resolver *pagemap.Resolver
	Exam     *exam.Service
	Logger   *slog.Logger
	Output   output.Format
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// LayoutFrom extracts the library layout from context.
func LayoutFrom(ctx context.Context) *library.Layout {
	if s := ServicesFrom(ctx); s != nil {
		return s.Layout
	}
	return nil
}

// ResolverFrom extracts the page map resolver from context.
func ResolverFrom(ctx context.Context) *pagemap.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// ExamFrom extracts the exam service from context.
func ExamFrom(ctx context.Context) *exam.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Exam
	}
	return nil
}

// LoggerFrom extracts the logger from context.
// Returns slog.Default() if not present.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// OutputFrom extracts the output format from context.
func OutputFrom(ctx context.Context) output.Format {
	if s := ServicesFrom(ctx); s != nil && s.Output != "" {
		return s.Output
	}
	return output.FormatYAML
}
