package cmd

import (
	"fmt"

	"github.com/teemow/mcp-calendar/internal/logging"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/calendar_tools"
	"github.com/teemow/mcp-calendar/internal/tools/common"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
	"github.com/teemow/mcp-calendar/internal/tools/routing_tools"
)

// buildRegistry registers every tool group against sc. Calls pass through the
// instrumentation middleware before reaching the handlers.
func buildRegistry(sc *server.ServerContext) (*registry.Registry, error) {
	reg := registry.New(
		registry.WithMiddleware(common.Instrumented(sc)),
		registry.WithLogger(logging.NewSlogAdapter(sc.Logger()).With(logging.KeyComponent, "registry")),
	)

	groups := []struct {
		name     string
		register func(*registry.Registry, *server.ServerContext) error
	}{
		{name: "Calendar", register: calendar_tools.RegisterCalendarTools},
		{name: "Routing", register: routing_tools.RegisterRoutingTools},
	}

	for _, g := range groups {
		if err := g.register(reg, sc); err != nil {
			return nil, fmt.Errorf("failed to register %s tools: %w", g.name, err)
		}
	}
	return reg, nil
}
