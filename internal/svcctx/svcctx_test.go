package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/output"
)

func TestServicesFrom(t *testing.T) {
	ctx := context.Background()

	if ServicesFrom(ctx) != nil {
		t.Error("expected nil services on a bare context")
	}
	if LayoutFrom(ctx) != nil || ResolverFrom(ctx) != nil || ExamFrom(ctx) != nil || ConfigFrom(ctx) != nil {
		t.Error("expected nil extractors on a bare context")
	}
	if LoggerFrom(ctx) != slog.Default() {
		t.Error("expected default logger on a bare context")
	}
	if OutputFrom(ctx) != output.FormatYAML {
		t.Error("expected yaml output on a bare context")
	}

	layout := &library.Layout{}
	logger := slog.New(slog.DiscardHandler)
	ctx = WithServices(ctx, &Services{Layout: layout, Logger: logger, Output: output.FormatJSON})

	if LayoutFrom(ctx) != layout {
		t.Error("expected layout from context")
	}
	if LoggerFrom(ctx) != logger {
		t.Error("expected logger from context")
	}
	if OutputFrom(ctx) != output.FormatJSON {
		t.Errorf("expected json output, got %s", OutputFrom(ctx))
	}
}
