// Package server holds the status HTTP server configuration.
//
// The watch command handles server startup; this package only defines
// the configuration structure so that core/config can embed it and the
// status features can validate against it.
//
// # Configuration
//
// The Config struct defines whether the status API runs at all, the
// listen port, and an optional API key. With an empty key the API is
// open; the health endpoint is always open either way.
package server
