package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/mcp-calendar/internal/instrumentation"
)

// MaxListResults caps the number of events returned by ListEvents.
const MaxListResults = 5

// Client wraps the Google Calendar service for a single calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    *instrumentation.Metrics
}

// NewClientFromService wraps an existing service. Used by the Provider and by tests.
func NewClientFromService(svc *calendar.Service, calendarID string) *Client {
	return &Client{svc: svc, calendarID: calendarID}
}

// CalendarID returns the calendar this client operates on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// EventNotFoundError is returned when the API reports the event as missing or deleted.
type EventNotFoundError struct {
	EventID string
	Err     error
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("event %q not found", e.EventID)
}

func (e *EventNotFoundError) Unwrap() error {
	return e.Err
}

// ListEvents returns up to MaxListResults single events starting between
// timeMin and timeMax, ordered by start time. No events yields an empty slice.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]EventRecord, error) {
	var events *calendar.Events
	err := c.observe(ctx, instrumentation.OperationList, "", func(ctx context.Context) error {
		var err error
		events, err = c.svc.Events.List(c.calendarID).
			TimeMin(FormatTime(timeMin)).
			TimeMax(FormatTime(timeMax)).
			MaxResults(MaxListResults).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	records := make([]EventRecord, 0, len(events.Items))
	for _, event := range events.Items {
		records = append(records, toEventRecord(event))
	}
	return records, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (EventRecord, error) {
	var event *calendar.Event
	err := c.observe(ctx, instrumentation.OperationGet, eventID, func(ctx context.Context) error {
		var err error
		event, err = c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return EventRecord{}, fmt.Errorf("failed to get event: %w", wrapNotFound(eventID, err))
	}
	return toEventRecord(event), nil
}

// InsertEvent creates an event and returns the API's representation of it.
func (c *Client) InsertEvent(ctx context.Context, input EventInput) (*calendar.Event, error) {
	var created *calendar.Event
	err := c.observe(ctx, instrumentation.OperationCreate, "", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(c.calendarID, input.toEvent()).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// PatchEvent applies a partial update and returns the updated event.
func (c *Client) PatchEvent(ctx context.Context, eventID string, patch EventPatch) (*calendar.Event, error) {
	var updated *calendar.Event
	err := c.observe(ctx, instrumentation.OperationUpdate, eventID, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Events.Patch(c.calendarID, eventID, patch.toEvent()).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", wrapNotFound(eventID, err))
	}
	return updated, nil
}

// DeleteEvent deletes an event. The API answers with an empty body.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.observe(ctx, instrumentation.OperationDelete, eventID, func(ctx context.Context) error {
		return c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", wrapNotFound(eventID, err))
	}
	return nil
}

// FormatTime renders t the way the API expects time bounds: UTC with
// millisecond precision, e.g. 2024-01-01T00:00:00.000Z.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (c *Client) observe(ctx context.Context, operation, eventID string, call func(context.Context) error) error {
	ctx, span := instrumentation.StartUpstreamSpan(ctx, instrumentation.ServiceCalendar, operation,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(c.calendarID, eventID).Build()...)
	start := time.Now()

	err := call(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordUpstreamOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	instrumentation.EndSpan(span, err)
	return err
}

func wrapNotFound(eventID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return &EventNotFoundError{EventID: eventID, Err: err}
	}
	return err
}
