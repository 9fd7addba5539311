// Package instrumentation provides OpenTelemetry metrics, tracing, and audit
// logging for the mcp-calendar server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: HTTP transport requests
//     by method, normalized path, and status code
//   - upstream_api_operations_total, upstream_api_operation_duration_seconds:
//     calls to the calendar and openrouteservice APIs by service, operation, status
//   - oauth_token_refresh_total: access token refreshes by result
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by tool and status
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and upstream calls
// (calendar.<operation>, openrouteservice.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-calendar)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ARGUMENTS
//
// The stdout exporters write to stderr unless Config.ConsoleWriter says otherwise.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "get_events", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
