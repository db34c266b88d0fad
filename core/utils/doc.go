// Package utils provides conversion helpers shared by the floorplan-sync packages.
// Values decoded from remote JSON arrive as json.Number, float64, string or nil; the helpers
// here turn them into the concrete types the projector and the store expect.
package utils
