package instrumentation

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: mcp-calendar)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint without protocol prefix,
	// for example "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure switches OTLP export to plain HTTP. Local development only.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// ConsoleWriter receives the output of the stdout exporters. It defaults
	// to os.Stderr because stdout carries the MCP stream under stdio.
	ConsoleWriter io.Writer

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludeArguments adds the names of the supplied tool arguments to each
	// audit line. Values are never logged.
	IncludeArguments bool
}

// Environment variables read by DefaultConfig.
const (
	EnvServiceName        = "OTEL_SERVICE_NAME"
	EnvServiceInstanceID  = "OTEL_SERVICE_INSTANCE_ID"
	EnvEnabled            = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter    = "METRICS_EXPORTER"
	EnvTracingExporter    = "TRACING_EXPORTER"
	EnvOTLPEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure       = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvTraceSamplingRate  = "OTEL_TRACES_SAMPLER_ARG"
	EnvAuditEnabled       = "AUDIT_LOGGING_ENABLED"
	EnvAuditIncludeArgs   = "AUDIT_LOGGING_INCLUDE_ARGUMENTS"
	defaultServiceName    = "mcp-calendar"
	defaultSamplingRate   = 0.1
	defaultServiceVersion = "unknown"
)

// DefaultConfig reads the instrumentation settings from the environment.
// Malformed booleans and numbers fall back to the default.
func DefaultConfig() Config {
	env := envReader(os.Getenv)
	return Config{
		ServiceName:       env.str(EnvServiceName, defaultServiceName),
		ServiceVersion:    defaultServiceVersion,
		ServiceInstanceID: env.str(EnvServiceInstanceID, ""),
		Enabled:           env.boolean(EnvEnabled, true),
		MetricsExporter:   env.str(EnvMetricsExporter, ExporterPrometheus),
		TracingExporter:   env.str(EnvTracingExporter, ExporterNone),
		OTLPEndpoint:      env.str(EnvOTLPEndpoint, ""),
		OTLPInsecure:      env.boolean(EnvOTLPInsecure, false),
		TraceSamplingRate: env.float(EnvTraceSamplingRate, defaultSamplingRate),
		ConsoleWriter:     os.Stderr,
		AuditLogging: AuditLoggingConfig{
			Enabled:          env.boolean(EnvAuditEnabled, true),
			IncludeArguments: env.boolean(EnvAuditIncludeArgs, false),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}

	return nil
}

type envReader func(string) string

func (e envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return fallback
}

func (e envReader) boolean(key string, fallback bool) bool {
	v, err := strconv.ParseBool(e.str(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func (e envReader) float(key string, fallback float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Constants for metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	// Upstream service names
	ServiceCalendar = "calendar"
	ServiceRouting  = "openrouteservice"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)
