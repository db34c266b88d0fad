// Package server holds the HTTP status server configuration.
//
// The serve command owns the Fiber application itself; this package only defines
// the settings it reads: the listen port, the optional API key and the run schedule.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/serve.go.
package server
