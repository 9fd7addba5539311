// Package config assembles the process configuration once at startup.
//
// Values are resolved with the following precedence, highest first:
// environment variables, the YAML config file, built-in defaults. The file is
// either given explicitly or discovered as mcp-calendar.yaml (or .yml) in the
// working directory:
//
//	calendar:
//	  client_id: ...
//	  client_secret: ...
//	  redirect_uri: http://localhost:8080/callback
//	  refresh_token: ...
//	  calendar_id: primary
//	routing:
//	  api_key: ...
//	  timeout: 30s
//
// Missing calendar credentials are not an error here; they are reported by
// the calendar provider on first use.
package config
