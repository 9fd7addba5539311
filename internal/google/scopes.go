package google

import calendar "google.golang.org/api/calendar/v3"

// CalendarScopes are requested during consent. Full calendar access is needed
// because the server creates, patches, and deletes events.
var CalendarScopes = []string{
	calendar.CalendarScope,
}
