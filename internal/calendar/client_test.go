package calendar_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/mcp-calendar/internal/calendar"
	"github.com/teemow/mcp-calendar/internal/calendar/calendartest"
	"github.com/teemow/mcp-calendar/internal/config"
)

var testCreds = config.CalendarCredentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	RedirectURI:  "http://localhost:8080/callback",
	RefreshToken: "refresh-token",
}

func newTestClient(t *testing.T, calendarID string) (*calendar.Client, *calendartest.Server) {
	t.Helper()

	srv := calendartest.NewServer(t)
	provider := calendar.NewProvider(testCreds, calendarID,
		calendar.WithEndpoint(srv.Endpoint()),
		calendar.WithTokenURL(srv.TokenURL()),
		calendar.WithTransport(http.DefaultTransport),
	)
	client, err := provider.CalendarClient(context.Background())
	require.NoError(t, err)
	return client, srv
}

func TestListEvents(t *testing.T) {
	client, srv := newTestClient(t, "")
	srv.Handle("GET", "/calendars/primary/events", http.StatusOK, `{
		"items": [
			{"summary": "Standup", "start": {"dateTime": "2024-01-01T09:00:00Z"}, "end": {"dateTime": "2024-01-01T09:15:00Z"}},
			{"summary": "Holiday", "start": {"date": "2024-01-02"}, "end": {"date": "2024-01-03"}},
			{"start": {"date": "2024-01-04", "dateTime": "2024-01-04T10:00:00Z"}, "end": {"dateTime": "2024-01-04T11:00:00Z"}}
		]
	}`)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	records, err := client.ListEvents(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, []calendar.EventRecord{
		{Summary: "Standup", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T09:15:00Z"},
		{Summary: "Holiday", Start: "2024-01-02", End: "2024-01-03"},
		{Start: "2024-01-04T10:00:00Z", End: "2024-01-04T11:00:00Z"},
	}, records)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	q := reqs[0].Query
	assert.Equal(t, "2024-01-01T00:00:00.000Z", q.Get("timeMin"))
	assert.Equal(t, "2024-01-07T00:00:00.000Z", q.Get("timeMax"))
	assert.Equal(t, "5", q.Get("maxResults"))
	assert.Equal(t, "true", q.Get("singleEvents"))
	assert.Equal(t, "startTime", q.Get("orderBy"))
	assert.Equal(t, "Bearer "+calendartest.AccessToken, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, 1, srv.TokenCalls())
}

func TestListEvents_NoItems(t *testing.T) {
	client, srv := newTestClient(t, "")
	srv.Handle("GET", "/calendars/primary/events", http.StatusOK, `{"kind": "calendar#events"}`)

	records, err := client.ListEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	encoded, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(encoded))
}

func TestListEvents_CustomCalendar(t *testing.T) {
	client, srv := newTestClient(t, "work")
	srv.Handle("GET", "/calendars/work/events", http.StatusOK, `{}`)

	_, err := client.ListEvents(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "work", client.CalendarID())
}

func TestGetEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want calendar.EventRecord
	}{
		{
			name: "all-day event uses date",
			body: `{"summary": "Trip", "start": {"date": "2024-01-01"}, "end": {"date": "2024-01-02"}}`,
			want: calendar.EventRecord{Summary: "Trip", Start: "2024-01-01", End: "2024-01-02"},
		},
		{
			name: "dateTime wins over date",
			body: `{"summary": "Call", "start": {"date": "2024-01-01", "dateTime": "2024-01-01T10:00:00+01:00"}, "end": {"dateTime": "2024-01-01T11:00:00+01:00"}}`,
			want: calendar.EventRecord{Summary: "Call", Start: "2024-01-01T10:00:00+01:00", End: "2024-01-01T11:00:00+01:00"},
		},
		{
			name: "no summary",
			body: `{"start": {"date": "2024-02-01"}}`,
			want: calendar.EventRecord{Start: "2024-02-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(t, "")
			srv.Handle("GET", "/calendars/primary/events/evt1", http.StatusOK, tt.body)

			got, err := client.GetEvent(context.Background(), "evt1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	client, _ := newTestClient(t, "")

	_, err := client.GetEvent(context.Background(), "missing")
	require.Error(t, err)

	var notFound *calendar.EventNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.EventID)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr), "the API error stays reachable")
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestInsertEvent(t *testing.T) {
	tests := []struct {
		name     string
		input    calendar.EventInput
		wantBody string
	}{
		{
			name:     "without location",
			input:    calendar.EventInput{Title: "Standup", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T09:15:00Z"},
			wantBody: `{"summary":"Standup","start":{"dateTime":"2024-01-01T09:00:00Z"},"end":{"dateTime":"2024-01-01T09:15:00Z"}}`,
		},
		{
			name:     "with location",
			input:    calendar.EventInput{Title: "Lunch", Start: "2024-01-01T12:00:00Z", End: "2024-01-01T13:00:00Z", Location: "Cafe"},
			wantBody: `{"summary":"Lunch","location":"Cafe","start":{"dateTime":"2024-01-01T12:00:00Z"},"end":{"dateTime":"2024-01-01T13:00:00Z"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(t, "")
			srv.Handle("POST", "/calendars/primary/events", http.StatusOK, `{"id": "new-1", "status": "confirmed", "summary": "`+tt.input.Title+`"}`)

			created, err := client.InsertEvent(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, "new-1", created.Id)
			assert.Equal(t, "confirmed", created.Status)

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.JSONEq(t, tt.wantBody, string(reqs[0].Body))
		})
	}
}

func TestPatchEvent_SendsOnlyPresentFields(t *testing.T) {
	tests := []struct {
		name     string
		patch    calendar.EventPatch
		wantBody string
	}{
		{"location only", calendar.EventPatch{Location: "Berlin"}, `{"location":"Berlin"}`},
		{"title only", calendar.EventPatch{Title: "Renamed"}, `{"summary":"Renamed"}`},
		{"times", calendar.EventPatch{Start: "2024-01-01T10:00:00Z", End: "2024-01-01T11:00:00Z"}, `{"start":{"dateTime":"2024-01-01T10:00:00Z"},"end":{"dateTime":"2024-01-01T11:00:00Z"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(t, "")
			srv.Handle("PATCH", "/calendars/primary/events/evt1", http.StatusOK, `{"id": "evt1", "location": "Berlin"}`)

			updated, err := client.PatchEvent(context.Background(), "evt1", tt.patch)
			require.NoError(t, err)
			assert.Equal(t, "evt1", updated.Id)

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPatch, reqs[0].Method)
			assert.JSONEq(t, tt.wantBody, string(reqs[0].Body))
		})
	}
}

func TestDeleteEvent(t *testing.T) {
	client, srv := newTestClient(t, "")
	srv.Handle("DELETE", "/calendars/primary/events/evt1", http.StatusNoContent, "")

	require.NoError(t, client.DeleteEvent(context.Background(), "evt1"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
}

func TestDeleteEvent_Gone(t *testing.T) {
	client, srv := newTestClient(t, "")
	srv.Handle("DELETE", "/calendars/primary/events/evt1", http.StatusGone,
		`{"error":{"code":410,"message":"Resource has been deleted","errors":[{"reason":"deleted","message":"Resource has been deleted"}]}}`)

	err := client.DeleteEvent(context.Background(), "evt1")
	var notFound *calendar.EventNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
