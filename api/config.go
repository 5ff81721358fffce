// Package api provides the HTTP API for asking the database questions in
// conversational sessions.
package api

import "net/http"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// MetricsHandler is served at /metrics when set
	MetricsHandler http.Handler

	// MCPHandler is served at /mcp when set
	MCPHandler http.Handler
}
