// Package middleware contains HTTP middleware for the status server.
//
// # Components
//
//   - Auth: API key validation through the X-API-Key header. Requests pass untouched
//     when no key is configured.
//
// Request ids come from Fiber's own requestid middleware and are read back by
// logger.WithRequestID.
package middleware
