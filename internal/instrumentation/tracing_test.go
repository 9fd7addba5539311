package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withSpanRecorder installs a recording tracer provider for the duration of the test.
func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithInvocationID("inv-1").
		WithCalendar("primary", "evt-1").
		WithHints(false, true).
		Build()

	if len(attrs) != 5 {
		t.Fatalf("expected 5 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrInvocationID] != "inv-1" {
		t.Errorf("expected invocation id 'inv-1', got %v", attrMap[SpanAttrInvocationID])
	}
	if attrMap[SpanAttrCalendarID] != "primary" {
		t.Errorf("expected calendar id 'primary', got %v", attrMap[SpanAttrCalendarID])
	}
	if attrMap[SpanAttrEventID] != "evt-1" {
		t.Errorf("expected event id 'evt-1', got %v", attrMap[SpanAttrEventID])
	}
	if attrMap[SpanAttrDestructive] != true {
		t.Errorf("expected destructive true, got %v", attrMap[SpanAttrDestructive])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithInvocationID("").
		WithCalendar("", "").
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %d", len(attrs))
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartToolSpan(context.Background(), "get_events")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tool.get_events" {
		t.Errorf("span name = %q, want tool.get_events", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", spans[0].SpanKind())
	}
}

func TestStartUpstreamSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := StartUpstreamSpan(context.Background(), ServiceRouting, OperationDirections)
	if GetTraceID(ctx) == "" || GetSpanID(ctx) == "" {
		t.Error("expected trace and span ids from a recording span")
	}
	EndSpan(span, errors.New("upstream returned 500"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name() != "openrouteservice.directions" {
		t.Errorf("span name = %q, want openrouteservice.directions", got.Name())
	}
	if got.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", got.SpanKind())
	}
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want error", got.Status().Code)
	}
}

func TestEndSpan_Success(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartUpstreamSpan(context.Background(), ServiceCalendar, OperationGet)
	EndSpan(span, nil)

	if got := recorder.Ended()[0].Status().Code; got != codes.Ok {
		t.Errorf("status = %v, want ok", got)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span ID, got %q", id)
	}
}
