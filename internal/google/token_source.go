package google

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/logging"
)

// RefreshTokenSource returns a token source seeded only with the refresh
// token. No network call happens until the first Token call, which performs
// the standard refresh-token grant. Every refresh is counted on metrics, which
// may be nil.
func RefreshTokenSource(ctx context.Context, conf *oauth2.Config, refreshToken string, metrics *instrumentation.Metrics) oauth2.TokenSource {
	refresher := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return oauth2.ReuseTokenSource(nil, &meteredTokenSource{
		ctx:     ctx,
		source:  refresher,
		metrics: metrics,
	})
}

// meteredTokenSource sits under a ReuseTokenSource, so Token is only reached
// when the cached access token is missing or expired.
type meteredTokenSource struct {
	ctx     context.Context
	source  oauth2.TokenSource
	metrics *instrumentation.Metrics
}

func (s *meteredTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.source.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		slog.Warn("access token refresh failed", logging.Operation("oauth.refresh"), logging.Err(err))
		return nil, err
	}
	s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)
	slog.Debug("access token refreshed", logging.Operation("oauth.refresh"), slog.Time("expiry", tok.Expiry))
	return tok, nil
}
