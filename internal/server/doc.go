// Package server holds the runtime pieces around the MCP server: the shared
// ServerContext handed to tool handlers, the streamable HTTP transport, the
// Kubernetes style health endpoints and the dedicated Prometheus metrics server.
//
// The ServerContext is built once from the loaded configuration. It owns the
// calendar credential provider and the routing client, and carries the
// optional metrics recorder and audit logger used by tool instrumentation.
//
// HTTP endpoints of the streamable transport:
//   - /mcp: MCP protocol
//   - /healthz: liveness
//   - /readyz: readiness
//   - /healthz/detailed: uptime, tool count, dependency configuration
//
// The metrics server exposes /metrics on its own address.
package server
