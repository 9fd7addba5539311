package calendar_tools

import (
	"fmt"

	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

const (
	paramStartDate = "startDate"
	paramEndDate   = "endDate"
	paramEventID   = "eventId"
	paramTitle     = "title"
	paramStart     = "start"
	paramEnd       = "end"
	paramLocation  = "location"
)

// Descriptors returns the calendar tool declarations in registration order.
func Descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "get_events",
			Description: "Get user's Google Calendar events",
			Params: []registry.Param{
				registry.StringParam(paramStartDate, "Events that start after or on this date"),
				registry.StringParam(paramEndDate, "Events that start before this date"),
			},
			ReadOnly:  true,
			Service:   instrumentation.ServiceCalendar,
			Operation: instrumentation.OperationList,
		},
		{
			Name:        "get_event",
			Description: "Get a specific Google Calendar event",
			Params: []registry.Param{
				registry.StringParam(paramEventID, "Event ID"),
			},
			ReadOnly:  true,
			Service:   instrumentation.ServiceCalendar,
			Operation: instrumentation.OperationGet,
		},
		{
			Name:        "add_event",
			Description: "Add a new event to user's Google Calendar",
			Params: []registry.Param{
				registry.StringParam(paramTitle, "Event title"),
				registry.StringParam(paramStart, "Event start date and time"),
				registry.StringParam(paramEnd, "Event end date and time"),
				registry.StringParam(paramLocation, "Geographic location of the event as free-form text").AsOptional(),
			},
			Service:   instrumentation.ServiceCalendar,
			Operation: instrumentation.OperationCreate,
		},
		{
			Name:        "update_event",
			Description: "Update an event on a user's Google Calendar",
			Params: []registry.Param{
				registry.StringParam(paramTitle, "Event title").AsOptional(),
				registry.StringParam(paramStart, "Event start date and time").AsOptional(),
				registry.StringParam(paramEnd, "Event end date and time").AsOptional(),
				registry.StringParam(paramEventID, "Event ID"),
				registry.StringParam(paramLocation, "Geographic location of the event as free-form text").AsOptional(),
			},
			Destructive: true,
			Service:     instrumentation.ServiceCalendar,
			Operation:   instrumentation.OperationUpdate,
		},
		{
			Name:        "delete_event",
			Description: "Delete an event from a user's Google Calendar",
			Params: []registry.Param{
				registry.StringParam(paramEventID, "Event ID"),
			},
			Destructive: true,
			Service:     instrumentation.ServiceCalendar,
			Operation:   instrumentation.OperationDelete,
		},
	}
}

// RegisterCalendarTools registers all Calendar-related tools with the registry
func RegisterCalendarTools(reg *registry.Registry, sc *server.ServerContext) error {
	h := &eventHandlers{sc: sc}
	handlers := map[string]registry.Handler{
		"get_events":   h.getEvents,
		"get_event":    h.getEvent,
		"add_event":    h.addEvent,
		"update_event": h.updateEvent,
		"delete_event": h.deleteEvent,
	}

	for _, d := range Descriptors() {
		if err := reg.Register(d, handlers[d.Name]); err != nil {
			return fmt.Errorf("failed to register calendar tool %s: %w", d.Name, err)
		}
	}
	return nil
}
