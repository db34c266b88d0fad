// Package config provides configuration management for floorplan-sync.
//
// It utilizes Viper for loading configuration from a .env file, an optional config.yaml
// and environment variables, in increasing order of precedence. Defaults come from the
// `default` struct tags of each section.
//
// # Configuration Structure
//
//   - GIS: portal URL, credentials and feature layer item id
//   - Database: destination connection (PostgreSQL via pgx or lib/pq, or SQLite)
//   - DayInterval: look-back window of the recent batch
//   - Sync: spatial reference, floor update switch, delete batch size, time zone
//   - Log: level, format and optional log file
//   - Storage: optional S3/MinIO archive of run reports
//   - Server: status API port, API key and schedule
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
