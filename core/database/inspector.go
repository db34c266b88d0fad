package database

import (
	"context"
	"fmt"

	"floorplan-sync/core/reconcile"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TableExists reports whether key names an existing table.
func TableExists(ctx context.Context, db *gorm.DB, key reconcile.TableKey) (bool, error) {
	db = db.WithContext(ctx)

	if db.Dialector.Name() == "sqlite" {
		// Each location schema is an attached database; a missing schema means a missing table.
		var attached int64
		if err := db.Raw("SELECT COUNT(*) FROM pragma_database_list WHERE name = ?", key.Schema).Row().Scan(&attached); err != nil {
			return false, fmt.Errorf("failed to list attached schemas: %w", err)
		}
		if attached == 0 {
			return false, nil
		}
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s.sqlite_master WHERE type = 'table' AND name = ?", pq.QuoteIdentifier(key.Schema))
		if err := db.Raw(query, key.Table).Row().Scan(&count); err != nil {
			return false, fmt.Errorf("failed to check table %s: %w", key, err)
		}
		return count > 0, nil
	}

	var exists bool
	err := db.Raw(
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?)",
		key.Schema, key.Table,
	).Row().Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", key, err)
	}
	return exists, nil
}

// QualifiedName returns the quoted "schema"."table" identifier for key.
func QualifiedName(key reconcile.TableKey) string {
	return pq.QuoteIdentifier(key.Schema) + "." + pq.QuoteIdentifier(key.Table)
}
