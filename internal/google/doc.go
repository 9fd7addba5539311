// Package google holds the OAuth2 plumbing shared by the calendar provider
// and the auth command: client configuration, the consent URL, the
// authorization-code exchange, and a refresh-token source.
//
// The server never stores tokens. It is configured with a long-lived refresh
// token and obtains access tokens from it on demand.
package google
