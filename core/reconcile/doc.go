// Package reconcile implements one-way reconciliation of a remote feature layer into
// per-location, per-floor destination tables.
//
// A run reads three things from the Source before touching the Store:
//   - the authoritative snapshot: every feature's location, floor and GlobalID
//   - the recent batch: features edited within the configured window, with geometry
//   - the coded-value domains of the layer
//
// It then opens a single transaction and
//
//  1. upserts the recent batch, deciding insert vs. update by GlobalID presence
//  2. deletes, table by table, the persisted rows whose GlobalID is no longer in the snapshot
//  3. commits, or rolls back everything if any step failed
//
// Features that cannot be routed to an existing table are logged, recorded in the RunReport
// and skipped. Tables are never created here.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(source, store, projector, logger, reconcile.Options{
//	    DayInterval:      7,
//	    SpatialReference: 31982,
//	    UpdateFloor:      true,
//	})
//	report, err := engine.Run(ctx)
package reconcile
