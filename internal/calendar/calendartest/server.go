// Package calendartest provides a fake Google Calendar API for tests.
package calendartest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// AccessToken is the token handed out by the fake token endpoint.
const AccessToken = "test-access-token"

const notFoundBody = `{"error":{"code":404,"message":"Not Found","errors":[{"domain":"global","reason":"notFound","message":"Not Found"}]}}`

// Request is a recorded API request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSONBody decodes the request body into a generic map.
func (r Request) JSONBody(t testing.TB) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(r.Body, &body); err != nil {
		t.Fatalf("request body is not a JSON object: %v (%q)", err, r.Body)
	}
	return body
}

type response struct {
	status int
	body   string
}

// Server serves canned responses keyed by method and path, plus a token
// endpoint at /token. Unknown routes answer 404 in the API's error format.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	routes     map[string]response
	requests   []Request
	tokenCalls int
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]response)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers the response for method and path, e.g.
// Handle("GET", "/calendars/primary/events/evt1", 200, `{"id":"evt1"}`).
func (s *Server) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = response{status: status, body: body}
}

// Endpoint is the API base URL to pass to calendar.WithEndpoint.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// TokenURL is the token endpoint to pass to calendar.WithTokenURL.
func (s *Server) TokenURL() string {
	return s.URL + "/token"
}

// Requests returns the recorded API requests, excluding token requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// TokenCalls returns how many times the token endpoint was hit.
func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	if r.URL.Path == "/token" {
		s.tokenCalls++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": AccessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
		return
	}

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		resp = response{status: http.StatusNotFound, body: notFoundBody}
	}
	if resp.body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}
