// Package calendar_tools provides the MCP tools for Google Calendar events:
// get_events, get_event, add_event, update_event and delete_event.
//
// All tools operate on the calendar configured for the server (the primary
// calendar by default). get_events and get_event return a reduced record of
// summary, start and end; add_event and update_event return the event as the
// API reports it.
package calendar_tools
