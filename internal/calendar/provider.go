package calendar

import (
	"context"
	"fmt"
	"net/http"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/google"
	"github.com/teemow/mcp-calendar/internal/instrumentation"
)

// Provider turns the configured credentials into authenticated calendar clients.
type Provider struct {
	creds      config.CalendarCredentials
	calendarID string
	opts       providerOptions
}

type providerOptions struct {
	endpoint  string
	tokenURL  string
	transport http.RoundTripper
	metrics   *instrumentation.Metrics
}

// ProviderOption customizes a Provider.
type ProviderOption func(*providerOptions)

// WithEndpoint points the client at a different Calendar API base URL.
func WithEndpoint(endpoint string) ProviderOption {
	return func(o *providerOptions) {
		o.endpoint = endpoint
	}
}

// WithTokenURL overrides the OAuth2 token endpoint used for refreshes.
func WithTokenURL(tokenURL string) ProviderOption {
	return func(o *providerOptions) {
		o.tokenURL = tokenURL
	}
}

// WithTransport sets the base transport under the OAuth2 transport.
func WithTransport(rt http.RoundTripper) ProviderOption {
	return func(o *providerOptions) {
		o.transport = rt
	}
}

// WithMetrics records token refreshes and API calls on m.
func WithMetrics(m *instrumentation.Metrics) ProviderOption {
	return func(o *providerOptions) {
		o.metrics = m
	}
}

// NewProvider creates a Provider. An empty calendarID means the primary calendar.
func NewProvider(creds config.CalendarCredentials, calendarID string, opts ...ProviderOption) *Provider {
	if calendarID == "" {
		calendarID = config.DefaultCalendarID
	}
	p := &Provider{creds: creds, calendarID: calendarID}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// Configured reports whether all four credential values are present.
func (p *Provider) Configured() bool {
	return p.creds.Validate() == nil
}

// CalendarID returns the calendar every client operates on.
func (p *Provider) CalendarID() string {
	return p.calendarID
}

// CalendarClient returns a fresh authenticated client. Missing credentials
// yield a *config.ConfigurationError before any network activity; the access
// token itself is fetched lazily by the first API call.
func (p *Provider) CalendarClient(ctx context.Context) (*Client, error) {
	if err := p.creds.Validate(); err != nil {
		return nil, err
	}

	conf := google.NewOAuthConfig(p.creds)
	if p.opts.tokenURL != "" {
		conf.Endpoint.TokenURL = p.opts.tokenURL
	}

	ts := google.RefreshTokenSource(ctx, conf, p.creds.RefreshToken, p.opts.metrics)
	httpClient := google.NewHTTPClient(ts, p.opts.transport)

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if p.opts.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(p.opts.endpoint))
	}

	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	client := NewClientFromService(svc, p.calendarID)
	client.metrics = p.opts.metrics
	return client, nil
}
