package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanHandler wraps a slog.Handler. Records logged with a context that
// carries a recording span get trace_id and span_id attributes; warnings
// become span events and errors are recorded on the span, which is marked
// failed.
type SpanHandler struct {
	slog.Handler
}

func NewSpanHandler(h slog.Handler) *SpanHandler {
	return &SpanHandler{Handler: h}
}

func (h *SpanHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if span.IsRecording() {
		sc := span.SpanContext()
		if sc.HasTraceID() {
			r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
		}
		if sc.HasSpanID() {
			r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
		}
		if r.Level >= slog.LevelWarn {
			enrichSpan(span, r)
		}
	}

	return h.Handler.Handle(ctx, r)
}

func enrichSpan(span trace.Span, r slog.Record) {
	attrs := make([]attribute.KeyValue, 0, r.NumAttrs())
	var recorded error

	r.Attrs(func(a slog.Attr) bool {
		v := a.Value.Resolve()
		switch v.Kind() {
		case slog.KindString:
			attrs = append(attrs, attribute.String(a.Key, v.String()))
		case slog.KindInt64:
			attrs = append(attrs, attribute.Int64(a.Key, v.Int64()))
		case slog.KindFloat64:
			attrs = append(attrs, attribute.Float64(a.Key, v.Float64()))
		case slog.KindBool:
			attrs = append(attrs, attribute.Bool(a.Key, v.Bool()))
		case slog.KindDuration:
			attrs = append(attrs, attribute.String(a.Key, v.Duration().String()))
		default:
			attrs = append(attrs, attribute.String(a.Key, v.String()))
		}

		if a.Key == "error" && v.Kind() == slog.KindAny {
			if e, ok := v.Any().(error); ok {
				recorded = e
			}
		}
		return true
	})

	if r.Level < slog.LevelError {
		span.AddEvent("log_warning", trace.WithAttributes(
			append(attrs, attribute.String("message", r.Message))...,
		))
		return
	}

	if recorded == nil {
		recorded = errors.New(r.Message)
	}
	span.RecordError(recorded, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, r.Message)
}

func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SpanHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *SpanHandler) WithGroup(name string) slog.Handler {
	return &SpanHandler{Handler: h.Handler.WithGroup(name)}
}
