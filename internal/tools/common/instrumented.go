package common

import (
	"context"
	"time"

	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/logging"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

// Instrumented returns registry middleware that wraps every tool call with a
// span, tool metrics and an audit log line. Calls rejected by argument
// validation are recorded as errors.
//
// Usage:
//
//	reg := registry.New(registry.WithMiddleware(common.Instrumented(sc)))
func Instrumented(sc *server.ServerContext) registry.Middleware {
	return func(d registry.Descriptor, next registry.Handler) registry.Handler {
		return func(ctx context.Context, args registry.Args) (any, error) {
			invocation := instrumentation.NewToolInvocation(d.Name).
				WithService(d.Service, d.Operation).
				WithArguments(args.Map())

			logger := logging.WithOperation(logging.WithTool(sc.Logger(), d.Name), d.Operation)
			attrs := instrumentation.NewSpanAttributeBuilder().
				WithInvocationID(invocation.ID).
				WithHints(d.ReadOnly, d.Destructive)
			if d.Service == instrumentation.ServiceCalendar {
				attrs = attrs.WithCalendar(sc.Config().CalendarID, args.String("eventId"))
				logger = logger.With(logging.CalendarID(sc.Config().CalendarID))
			}

			ctx, span := instrumentation.StartToolSpan(ctx, d.Name, attrs.Build()...)
			invocation.WithSpanContext(ctx)

			start := time.Now()
			value, err := next(ctx, args)
			duration := time.Since(start)

			status := instrumentation.StatusSuccess
			if err != nil {
				status = instrumentation.StatusError
				invocation.CompleteWithError(err)
			} else {
				invocation.CompleteSuccess()
			}
			instrumentation.EndSpan(span, err)

			sc.Metrics().RecordToolInvocation(ctx, d.Name, status, duration)
			sc.AuditLogger().LogToolInvocation(invocation)

			logger.Debug("tool call finished",
				logging.InvocationID(invocation.ID),
				logging.Status(status),
				logging.Duration(duration))

			return value, err
		}
	}
}
