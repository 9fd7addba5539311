// Package logging provides structured logging utilities for mcp-calendar.
//
// All diagnostics go through log/slog. The process logger writes to stderr,
// because stdout carries the MCP protocol stream when the stdio transport is
// in use.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "get_events")
//	logger.Info("tool completed",
//	    logging.Status(logging.StatusSuccess),
//	    logging.InvocationID(id))
//
// Credentials are never logged directly; use SanitizeToken when the presence
// of a secret is worth recording.
package logging
