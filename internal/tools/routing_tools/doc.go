// Package routing_tools exposes openrouteservice lookups as MCP tools:
// get_distance_and_time for driving distance and duration between two
// [longitude, latitude] points, and get_coordinates for geocoding a place name.
package routing_tools
