package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/instrumentation"
)

const (
	directionsPath = "/v2/directions/driving-car"
	geocodePath    = "/geocode/search"

	// maxErrorBody bounds how much of a failed response is kept for diagnostics.
	maxErrorBody = 64 << 10
)

// Coordinates is a [longitude, latitude] pair.
type Coordinates [2]float64

// RouteSummary is the summary of the first route returned by the directions API.
type RouteSummary struct {
	// Distance in meters.
	Distance float64 `json:"distance"`
	// Duration in seconds.
	Duration float64 `json:"duration"`
}

// Client talks to the openrouteservice REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithMetrics records every upstream call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(client *Client) {
		client.metrics = m
	}
}

// NewClient creates a Client from the routing configuration.
func NewClient(cfg config.RoutingConfig, opts ...Option) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultRoutingBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultRoutingTimeout
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Directions returns the summary of the fastest driving route between two points.
func (c *Client) Directions(ctx context.Context, from, to Coordinates) (RouteSummary, error) {
	payload, err := json.Marshal(directionsRequest{Coordinates: []Coordinates{from, to}})
	if err != nil {
		return RouteSummary{}, fmt.Errorf("failed to encode directions request: %w", err)
	}

	var resp directionsResponse
	err = c.do(ctx, instrumentation.OperationDirections, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+directionsPath, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return RouteSummary{}, err
	}

	if len(resp.Routes) == 0 {
		return RouteSummary{}, &EmptyResultError{Op: instrumentation.OperationDirections, Query: fmt.Sprintf("%v -> %v", from, to)}
	}
	return resp.Routes[0].Summary, nil
}

// Geocode returns the coordinates of the best match for a free-text place.
// The coordinates are returned as the API reports them; a match without both
// longitude and latitude is treated as a malformed response.
func (c *Client) Geocode(ctx context.Context, place string) ([]float64, error) {
	var resp geocodeResponse
	err := c.do(ctx, instrumentation.OperationGeocode, func(ctx context.Context) (*http.Request, error) {
		query := url.Values{}
		query.Set("api_key", c.apiKey)
		query.Set("text", place)
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+geocodePath+"?"+query.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Features) == 0 {
		return nil, &EmptyResultError{Op: instrumentation.OperationGeocode, Query: place}
	}
	coords := resp.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return nil, &UpstreamError{
			Op:         instrumentation.OperationGeocode,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("best match has %d coordinates, want longitude and latitude", len(coords)),
		}
	}
	return coords, nil
}

func (c *Client) do(ctx context.Context, op string, build func(context.Context) (*http.Request, error), out any) (err error) {
	if c.apiKey == "" {
		return &config.ConfigurationError{Keys: []string{config.EnvRoutingAPIKey}, Reason: "routing API key is not configured"}
	}

	ctx, span := instrumentation.StartUpstreamSpan(ctx, instrumentation.ServiceRouting, op)
	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordUpstreamOperation(ctx, instrumentation.ServiceRouting, op, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	req, err := build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}
