package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoTools      = "no tools registered"

	dependencyConfigured    = "configured"
	dependencyNotConfigured = "not configured"
)

// HealthChecker serves the liveness, readiness and detailed health endpoints.
// Missing upstream credentials never make the server unready: the tools
// report them per call, and the detailed endpoint lists them.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
	toolCount     func() int
}

// NewHealthChecker creates a HealthChecker that starts out ready.
// A nil ServerContext is allowed in tests.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// SetToolCounter sets the function reporting the number of registered tools.
// Once set, a server without tools is reported as not ready.
func (h *HealthChecker) SetToolCounter(count func() int) {
	h.toolCount = count
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds uptime, the tool count and the configuration
// state of each upstream. No upstream call is made to fill it.
type DetailedHealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Tools        int               `json:"tools,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// LivenessHandler serves /healthz. It only proves the process answers.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := h.checks()
		response := HealthResponse{Status: healthStatusOK, Checks: checks}
		code := http.StatusOK
		for _, result := range checks {
			if result != healthStatusOK {
				response.Status = healthStatusNotReady
				code = http.StatusServiceUnavailable
				break
			}
		}
		writeHealth(w, code, response)
	})
}

// DetailedHealthHandler serves /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := DetailedHealthResponse{
			Status:       healthStatusOK,
			Uptime:       time.Since(h.startTime).Truncate(time.Second).String(),
			Dependencies: h.dependencies(),
		}
		if h.toolCount != nil {
			response.Tools = h.toolCount()
		}

		code := http.StatusOK
		switch {
		case !h.ready.Load():
			response.Status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		case h.isServerShuttingDown():
			response.Status = healthStatusShuttingDown
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func (h *HealthChecker) checks() map[string]string {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
	}
	if h.isServerShuttingDown() {
		checks["shutdown"] = healthStatusShuttingDown
	}
	if h.toolCount != nil {
		checks["tools"] = healthStatusOK
		if h.toolCount() == 0 {
			checks["tools"] = healthStatusNoTools
		}
	}
	return checks
}

func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

func (h *HealthChecker) dependencies() map[string]string {
	if h.serverContext == nil {
		return nil
	}
	deps := map[string]string{
		"calendar": dependencyNotConfigured,
		"routing":  dependencyNotConfigured,
	}
	if h.serverContext.CalendarProvider().Configured() {
		deps["calendar"] = dependencyConfigured
	}
	if h.serverContext.RoutingClient().Configured() {
		deps["routing"] = dependencyConfigured
	}
	return deps
}

func writeHealth(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
