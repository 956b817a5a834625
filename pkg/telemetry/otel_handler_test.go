package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanHandler(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	var buf bytes.Buffer
	logger := slog.New(NewSpanHandler(slog.NewJSONHandler(&buf, nil)))

	ctx, span := tp.Tracer("test").Start(context.Background(), "config.Boot")
	logger.WarnContext(ctx, "Failed to read secret from file", "env", "DB_PASSWORD_FILE")
	logger.ErrorContext(ctx, "FATAL: Application configuration failed to boot", "error", errors.New("boom"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	var names []string
	for _, e := range ended[0].Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "log_warning")
	assert.Contains(t, names, "exception")

	assert.Contains(t, buf.String(), `"trace_id"`)
	assert.Contains(t, buf.String(), span.SpanContext().TraceID().String())
}

func TestSpanHandlerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSpanHandler(slog.NewJSONHandler(&buf, nil))).With("component", "config")

	logger.Error("no span here")
	assert.Contains(t, buf.String(), `"component":"config"`)
	assert.NotContains(t, buf.String(), "trace_id")
}
