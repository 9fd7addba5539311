package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// EventRecord is the reduced view of an event returned by the read tools.
// Start and End hold the dateTime when the event has one and the all-day
// date otherwise.
type EventRecord struct {
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// EventInput is the content of a new event. Start and End are RFC3339
// date-times passed through to the API unchanged.
type EventInput struct {
	Title    string
	Start    string
	End      string
	Location string
}

// EventPatch holds the fields of a partial update. Empty fields are left
// untouched on the server.
type EventPatch struct {
	Title    string
	Start    string
	End      string
	Location string
}

func (in EventInput) toEvent() *calendar.Event {
	return &calendar.Event{
		Summary:  in.Title,
		Location: in.Location,
		Start:    &calendar.EventDateTime{DateTime: in.Start},
		End:      &calendar.EventDateTime{DateTime: in.End},
	}
}

// toEvent builds a patch body. calendar.Event omits empty fields when
// marshalled, so only the fields set here are sent.
func (p EventPatch) toEvent() *calendar.Event {
	event := &calendar.Event{
		Summary:  p.Title,
		Location: p.Location,
	}
	if p.Start != "" {
		event.Start = &calendar.EventDateTime{DateTime: p.Start}
	}
	if p.End != "" {
		event.End = &calendar.EventDateTime{DateTime: p.End}
	}
	return event
}

func toEventRecord(event *calendar.Event) EventRecord {
	if event == nil {
		return EventRecord{}
	}
	return EventRecord{
		Summary: event.Summary,
		Start:   pickDate(event.Start),
		End:     pickDate(event.End),
	}
}

func pickDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}
