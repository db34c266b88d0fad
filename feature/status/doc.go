// Package status exposes the reconciliation runs over HTTP.
//
// Routes:
//
//	GET  /health      liveness and whether a run is in progress
//	GET  /runs/last   report of the most recent run
//	POST /runs        run now, or join the run in progress
//	GET  /runs        archived reports, newest first (archive enabled only)
//	GET  /runs/:id    one archived report (archive enabled only)
//
// The Service also drives the optional periodic schedule of the serve command.
package status
