package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/teemow/mcp-calendar/internal/config"
)

// NewOAuthConfig returns the OAuth2 client configuration for the calendar credentials.
// The refresh token is not part of it; see RefreshTokenSource.
func NewOAuthConfig(creds config.CalendarCredentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       CalendarScopes,
	}
}

// AuthURL returns the consent page URL. Offline access plus a forced consent
// prompt make Google issue a refresh token even for a previously approved client.
func AuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for a token that must carry a refresh token.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, errors.New("token response did not include a refresh token; revoke the app's access and retry")
	}
	return tok, nil
}

// NewHTTPClient returns an HTTP client that authorizes every request with
// tokens from ts. A nil base uses an HTTP/1.1-only transport, which avoids
// the HTTP/2 stream errors seen against Google APIs.
func NewHTTPClient(ts oauth2.TokenSource, base http.RoundTripper) *http.Client {
	if base == nil {
		base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   base,
		},
	}
}
