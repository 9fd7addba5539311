// Package cmd implements the command-line interface for mcp-calendar.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Run the Google consent flow and print a refresh token
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified,
// which is how MCP hosts launch the binary.
package cmd
