package contextkeys

import (
	"context"
	"testing"
)

func TestLoggerFromEmptyContextIsNoop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	if logger == nil {
		t.Fatalf("expected noop logger, got nil")
	}
	// не должно паниковать
	logger.WithFields(nil).Error("boom", nil, nil)
}

func TestTraceIDRoundTrip(t *testing.T) {
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
	ctx := ContextWithTraceID(context.Background(), "abc")
	if got := TraceIDFromContext(ctx); got != "abc" {
		t.Fatalf("trace id = %q", got)
	}
}
