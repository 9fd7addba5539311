package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

type harness struct {
	sc       *server.ServerContext
	reader   *sdkmetric.ManualReader
	spans    *tracetest.SpanRecorder
	auditBuf *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	var auditBuf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&auditBuf, nil)))

	sc, err := server.NewServerContext(context.Background(), &config.Config{CalendarID: "primary"},
		server.WithMetrics(metrics),
		server.WithAuditLogger(audit),
	)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	return &harness{sc: sc, reader: reader, spans: spans, auditBuf: &auditBuf}
}

func (h *harness) toolCount(t *testing.T, tool, status string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := h.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	want := attribute.NewSet(attribute.String("tool", tool), attribute.String("status", status))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestInstrumented_Success(t *testing.T) {
	h := newHarness(t)

	reg := registry.New(registry.WithMiddleware(Instrumented(h.sc)))
	reg.MustRegister(registry.Descriptor{
		Name:      "get_event",
		Params:    []registry.Param{registry.StringParam("eventId", "Event id")},
		ReadOnly:  true,
		Service:   instrumentation.ServiceCalendar,
		Operation: instrumentation.OperationGet,
	}, func(context.Context, registry.Args) (any, error) {
		return map[string]string{"summary": "Standup"}, nil
	})

	result := reg.Dispatch(context.Background(), registry.Invocation{
		ToolName:  "get_event",
		Arguments: map[string]any{"eventId": "evt-1"},
	})
	if result.IsError {
		t.Fatalf("unexpected failure: %s", result.Text())
	}

	if got := h.toolCount(t, "get_event", instrumentation.StatusSuccess); got != 1 {
		t.Errorf("mcp_tool_invocations_total{status=success} = %d, want 1", got)
	}

	ended := h.spans.Ended()
	if len(ended) != 1 || ended[0].Name() != "tool.get_event" {
		t.Fatalf("expected one tool.get_event span, got %d", len(ended))
	}
	attrs := map[string]any{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[instrumentation.SpanAttrEventID] != "evt-1" {
		t.Errorf("event id attribute = %v, want evt-1", attrs[instrumentation.SpanAttrEventID])
	}
	if attrs[instrumentation.SpanAttrCalendarID] != "primary" {
		t.Errorf("calendar id attribute = %v, want primary", attrs[instrumentation.SpanAttrCalendarID])
	}

	var line map[string]any
	if err := json.Unmarshal(h.auditBuf.Bytes(), &line); err != nil {
		t.Fatalf("audit line is not JSON: %v", err)
	}
	if line["msg"] != "tool_executed" || line["tool"] != "get_event" || line["service"] != "calendar" {
		t.Errorf("unexpected audit line: %v", line)
	}
	if id, _ := line["invocation_id"].(string); id == "" {
		t.Error("audit line should carry an invocation id")
	}
	if strings.Contains(h.auditBuf.String(), "evt-1") {
		t.Error("argument values must not be written to the audit log")
	}
}

func TestInstrumented_Error(t *testing.T) {
	h := newHarness(t)

	reg := registry.New(registry.WithMiddleware(Instrumented(h.sc)))
	reg.MustRegister(registry.Descriptor{
		Name:      "get_coordinates",
		Params:    []registry.Param{registry.StringParam("place", "Place")},
		Service:   instrumentation.ServiceRouting,
		Operation: instrumentation.OperationGeocode,
	}, func(context.Context, registry.Args) (any, error) {
		return nil, errors.New("error fetching coordinates: no results")
	})

	result := reg.Dispatch(context.Background(), registry.Invocation{
		ToolName:  "get_coordinates",
		Arguments: map[string]any{"place": "Atlantis"},
	})
	if !result.IsError {
		t.Fatal("expected failure envelope")
	}

	if got := h.toolCount(t, "get_coordinates", instrumentation.StatusError); got != 1 {
		t.Errorf("mcp_tool_invocations_total{status=error} = %d, want 1", got)
	}
	if !strings.Contains(h.auditBuf.String(), `"msg":"tool_failed"`) {
		t.Errorf("expected tool_failed audit line, got %s", h.auditBuf.String())
	}
}

func TestInstrumented_RejectedArguments(t *testing.T) {
	h := newHarness(t)

	called := false
	reg := registry.New(registry.WithMiddleware(Instrumented(h.sc)))
	reg.MustRegister(registry.Descriptor{
		Name:      "get_event",
		Params:    []registry.Param{registry.StringParam("eventId", "Event id")},
		Service:   instrumentation.ServiceCalendar,
		Operation: instrumentation.OperationGet,
	}, func(context.Context, registry.Args) (any, error) {
		called = true
		return "unreachable", nil
	})

	result := reg.Dispatch(context.Background(), registry.Invocation{ToolName: "get_event"})
	if !result.IsError {
		t.Fatal("expected failure envelope for missing eventId")
	}
	if called {
		t.Error("handler must not run when validation fails")
	}

	if got := h.toolCount(t, "get_event", instrumentation.StatusError); got != 1 {
		t.Errorf("mcp_tool_invocations_total{status=error} = %d, want 1", got)
	}
	ended := h.spans.Ended()
	if len(ended) != 1 || ended[0].Name() != "tool.get_event" {
		t.Fatalf("expected one tool.get_event span, got %d", len(ended))
	}
	if !strings.Contains(h.auditBuf.String(), `"msg":"tool_failed"`) {
		t.Errorf("expected tool_failed audit line, got %s", h.auditBuf.String())
	}
}

func TestInstrumented_WithoutInstrumentation(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	defer sc.Shutdown()

	reg := registry.New(registry.WithMiddleware(Instrumented(sc)))
	reg.MustRegister(registry.Descriptor{Name: "noop"}, func(context.Context, registry.Args) (any, error) {
		return "ok", nil
	})

	result := reg.Dispatch(context.Background(), registry.Invocation{ToolName: "noop"})
	if result.IsError || result.Text() != `"ok"` {
		t.Errorf("unexpected result %+v", result)
	}
}
