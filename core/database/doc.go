// Package database connects to the destination database and implements the reconciliation
// store on top of GORM.
//
// PostgreSQL/PostGIS is the production target, reachable through pgx (driver "postgres") or
// lib/pq (driver "pq"). SQLite is supported for local runs and tests; there each location
// schema is an attached database.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	store := database.NewStore(db, cfg.Sync.DeleteBatchSize)
package database
