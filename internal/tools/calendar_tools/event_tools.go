package calendar_tools

import (
	"context"

	"github.com/teemow/mcp-calendar/internal/calendar"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

type eventHandlers struct {
	sc *server.ServerContext
}

func (h *eventHandlers) getEvents(ctx context.Context, args registry.Args) (any, error) {
	timeMin, err := parseDate(args.String(paramStartDate))
	if err != nil {
		return nil, registry.NewValidationError(args.Tool(), paramStartDate, err.Error())
	}
	timeMax, err := parseDate(args.String(paramEndDate))
	if err != nil {
		return nil, registry.NewValidationError(args.Tool(), paramEndDate, err.Error())
	}

	client, err := h.sc.CalendarClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListEvents(ctx, timeMin, timeMax)
}

func (h *eventHandlers) getEvent(ctx context.Context, args registry.Args) (any, error) {
	client, err := h.sc.CalendarClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetEvent(ctx, args.String(paramEventID))
}

func (h *eventHandlers) addEvent(ctx context.Context, args registry.Args) (any, error) {
	client, err := h.sc.CalendarClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.InsertEvent(ctx, calendar.EventInput{
		Title:    args.String(paramTitle),
		Start:    args.String(paramStart),
		End:      args.String(paramEnd),
		Location: args.String(paramLocation),
	})
}

func (h *eventHandlers) updateEvent(ctx context.Context, args registry.Args) (any, error) {
	client, err := h.sc.CalendarClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.PatchEvent(ctx, args.String(paramEventID), calendar.EventPatch{
		Title:    args.String(paramTitle),
		Start:    args.String(paramStart),
		End:      args.String(paramEnd),
		Location: args.String(paramLocation),
	})
}

// deleteEvent reports success as an empty string; the API returns no body.
func (h *eventHandlers) deleteEvent(ctx context.Context, args registry.Args) (any, error) {
	client, err := h.sc.CalendarClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := client.DeleteEvent(ctx, args.String(paramEventID)); err != nil {
		return nil, err
	}
	return "", nil
}
