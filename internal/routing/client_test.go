package routing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mcp-calendar/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.RoutingConfig{APIKey: "test-key", BaseURL: srv.URL + "/"}, WithHTTPClient(srv.Client()))
}

func TestClient_Directions(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-car", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		_, _ = io.WriteString(w, `{"routes":[{"summary":{"distance":12345.6,"duration":912}},{"summary":{"distance":1,"duration":1}}]}`)
	})

	summary, err := client.Directions(context.Background(), Coordinates{8.681495, 49.41461}, Coordinates{8.687872, 49.420318})
	require.NoError(t, err)
	assert.Equal(t, RouteSummary{Distance: 12345.6, Duration: 912}, summary)

	assert.Equal(t, map[string]any{
		"coordinates": []any{
			[]any{8.681495, 49.41461},
			[]any{8.687872, 49.420318},
		},
	}, gotBody)
}

func TestClient_Directions_NoRoutes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"routes":[]}`)
	})

	_, err := client.Directions(context.Background(), Coordinates{0, 0}, Coordinates{1, 1})
	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty)
}

func TestClient_Directions_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":2010,"message":"Could not find routable point"}}`)
	})

	_, err := client.Directions(context.Background(), Coordinates{0, 0}, Coordinates{1, 1})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Contains(t, err.Error(), "Could not find routable point")
}

func TestClient_Geocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Brandenburger Tor, Berlin", r.URL.Query().Get("text"))

		_, _ = io.WriteString(w, `{"features":[{"geometry":{"coordinates":[13.377704,52.516275]}},{"geometry":{"coordinates":[1,2]}}]}`)
	})

	coords, err := client.Geocode(context.Background(), "Brandenburger Tor, Berlin")
	require.NoError(t, err)
	assert.Equal(t, []float64{13.377704, 52.516275}, coords)
}

func TestClient_Geocode_NoFeatures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"features":[]}`)
	})

	_, err := client.Geocode(context.Background(), "nowhere at all")
	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "nowhere at all", empty.Query)
}

func TestClient_Geocode_IncompleteCoordinates(t *testing.T) {
	for _, body := range []string{
		`{"features":[{"geometry":{"coordinates":[8.6]}}]}`,
		`{"features":[{"geometry":{"coordinates":[]}}]}`,
		`{"features":[{"geometry":{}}]}`,
	} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})

		coords, err := client.Geocode(context.Background(), "Heidelberg")
		assert.Nil(t, coords, body)
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream, body)
		assert.Contains(t, err.Error(), "want longitude and latitude", body)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.Geocode(context.Background(), "Berlin")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusOK, upstream.StatusCode)
}

func TestClient_MissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := NewClient(config.RoutingConfig{BaseURL: srv.URL})
	assert.False(t, client.Configured())

	_, err := client.Geocode(context.Background(), "Berlin")
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Keys, config.EnvRoutingAPIKey)

	_, err = client.Directions(context.Background(), Coordinates{0, 0}, Coordinates{1, 1})
	require.ErrorAs(t, err, &cfgErr)

	assert.Zero(t, calls.Load(), "no request may be sent without an API key")
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(config.RoutingConfig{APIKey: "k"})
	assert.Equal(t, config.DefaultRoutingBaseURL, client.baseURL)
	assert.Equal(t, config.DefaultRoutingTimeout, client.httpClient.Timeout)
}
