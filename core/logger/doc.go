// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the status server.
//
// # Outputs
//
// Entries always go to stderr. When a log file is configured they are written there too,
// so scheduled runs leave a persistent trail.
//
// # Context Awareness
//
// The WithRequestID helper extracts the request id set by Fiber's requestid middleware and
// attaches it to the log entry, so that all logs related to a specific request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", File: "sync.log"})
//	log.Info("Run committed")
//
//	// In a request handler:
//	l := logger.WithRequestID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
