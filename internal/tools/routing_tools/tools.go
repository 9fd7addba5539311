package routing_tools

import (
	"context"
	"fmt"

	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/routing"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

const (
	paramPoint1 = "point1Coordinates"
	paramPoint2 = "point2Coordinates"
	paramPlace  = "place"
)

// DistanceResult is the answer of get_distance_and_time.
type DistanceResult struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

// CoordinatesResult is the answer of get_coordinates.
type CoordinatesResult struct {
	Coordinates []float64 `json:"coordinates"`
}

// Descriptors returns the routing tool declarations in registration order.
func Descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		{
			Name:        "get_distance_and_time",
			Description: "Get the distance and time between two points",
			Params: []registry.Param{
				registry.CoordinatesParam(paramPoint1, "Coordinates of first point [longitude, latitude]"),
				registry.CoordinatesParam(paramPoint2, "Coordinates of second point [longitude, latitude]"),
			},
			ReadOnly:  true,
			Service:   instrumentation.ServiceRouting,
			Operation: instrumentation.OperationDirections,
		},
		{
			Name:        "get_coordinates",
			Description: "Get the coordinates of a place",
			Params: []registry.Param{
				registry.StringParam(paramPlace, "Name of the place to get coordinates for"),
			},
			ReadOnly:  true,
			Service:   instrumentation.ServiceRouting,
			Operation: instrumentation.OperationGeocode,
		},
	}
}

// RegisterRoutingTools registers the distance and geocoding tools.
func RegisterRoutingTools(reg *registry.Registry, sc *server.ServerContext) error {
	client := sc.RoutingClient()
	handlers := map[string]registry.Handler{
		"get_distance_and_time": func(ctx context.Context, args registry.Args) (any, error) {
			return distanceAndTime(ctx, client, args)
		},
		"get_coordinates": func(ctx context.Context, args registry.Args) (any, error) {
			return coordinates(ctx, client, args)
		},
	}

	for _, d := range Descriptors() {
		if err := reg.Register(d, handlers[d.Name]); err != nil {
			return fmt.Errorf("failed to register routing tool %s: %w", d.Name, err)
		}
	}
	return nil
}

func distanceAndTime(ctx context.Context, client *routing.Client, args registry.Args) (any, error) {
	summary, err := client.Directions(ctx,
		routing.Coordinates(args.Coordinates(paramPoint1)),
		routing.Coordinates(args.Coordinates(paramPoint2)),
	)
	if err != nil {
		return nil, fmt.Errorf("error fetching distance data: %w", err)
	}
	return DistanceResult{
		Distance: routing.FormatKilometers(summary.Distance),
		Duration: routing.FormatMinutes(summary.Duration),
	}, nil
}

func coordinates(ctx context.Context, client *routing.Client, args registry.Args) (any, error) {
	coords, err := client.Geocode(ctx, args.String(paramPlace))
	if err != nil {
		return nil, fmt.Errorf("error fetching coordinates: %w", err)
	}
	return CoordinatesResult{Coordinates: coords}, nil
}
