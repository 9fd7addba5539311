// Package calendar adapts the Google Calendar v3 API to the five event
// operations exposed as tools: list, get, insert, patch, and delete.
//
// A Provider validates the configured credentials and builds a Client per
// call. Clients are cheap and hold no state beyond the service handle.
//
//	client, err := provider.CalendarClient(ctx)
//	if err != nil {
//		return err // *config.ConfigurationError when credentials are missing
//	}
//	events, err := client.ListEvents(ctx, from, to)
//
// Read operations reduce events to EventRecord values whose start and end
// prefer the timed dateTime over the all-day date. Write operations return
// the API's event representation unchanged.
package calendar
