package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/mcp-calendar/internal/calendar"
	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/routing"
)

// ServerContext holds the dependencies shared by all tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config      *config.Config
	calendar    *calendar.Provider
	routing     *routing.Client
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

type serverOptions struct {
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	logger          *slog.Logger
	calendarOptions []calendar.ProviderOption
	routingOptions  []routing.Option
}

// Option configures a ServerContext.
type Option func(*serverOptions)

// WithMetrics sets the metrics recorder used by tools and upstream clients.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *serverOptions) {
		o.metrics = m
	}
}

// WithAuditLogger sets the audit logger for tool invocations.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(o *serverOptions) {
		o.auditLogger = al
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// WithCalendarOptions passes options to the calendar provider.
func WithCalendarOptions(opts ...calendar.ProviderOption) Option {
	return func(o *serverOptions) {
		o.calendarOptions = append(o.calendarOptions, opts...)
	}
}

// WithRoutingOptions passes options to the routing client.
func WithRoutingOptions(opts ...routing.Option) Option {
	return func(o *serverOptions) {
		o.routingOptions = append(o.routingOptions, opts...)
	}
}

// NewServerContext creates a new server context. Credentials are not checked
// here; a calendar tool reports missing credentials when it is first called.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	calendarOpts := append([]calendar.ProviderOption{calendar.WithMetrics(o.metrics)}, o.calendarOptions...)
	routingOpts := append([]routing.Option{routing.WithMetrics(o.metrics)}, o.routingOptions...)

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		config:      cfg,
		calendar:    calendar.NewProvider(cfg.Calendar, cfg.CalendarID, calendarOpts...),
		routing:     routing.NewClient(cfg.Routing, routingOpts...),
		metrics:     o.metrics,
		auditLogger: o.auditLogger,
		logger:      o.logger,
	}, nil
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the server was started with.
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// CalendarProvider returns the calendar credential provider.
func (sc *ServerContext) CalendarProvider() *calendar.Provider {
	return sc.calendar
}

// CalendarClient returns a calendar client bound to the configured calendar.
func (sc *ServerContext) CalendarClient(ctx context.Context) (*calendar.Client, error) {
	if sc.IsShutdown() {
		return nil, fmt.Errorf("server is shutting down")
	}
	return sc.calendar.CalendarClient(ctx)
}

// RoutingClient returns the openrouteservice client.
func (sc *ServerContext) RoutingClient() *routing.Client {
	return sc.routing
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
