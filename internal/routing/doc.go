// Package routing is a small client for the openrouteservice API, covering
// driving directions between two coordinates and free-text geocoding.
//
// Coordinates are [longitude, latitude] pairs throughout. Failed calls return
// *UpstreamError carrying the status and response body; successful calls with
// nothing to report return *EmptyResultError instead of an empty value.
package routing
