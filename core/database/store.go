package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"floorplan-sync/core/reconcile"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultDeleteBatchSize bounds the number of identifiers per DELETE statement.
const DefaultDeleteBatchSize = 500

// Store is the gorm-backed destination of a reconciliation run.
type Store struct {
	db        *gorm.DB
	batchSize int
}

// NewStore wraps db. A non-positive batchSize uses DefaultDeleteBatchSize.
func NewStore(db *gorm.DB, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = DefaultDeleteBatchSize
	}
	return &Store{db: db, batchSize: batchSize}
}

// Transaction runs fn inside a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx reconcile.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&storeTx{
			db:        tx,
			postgis:   tx.Dialector.Name() == "postgres",
			batchSize: s.batchSize,
		})
	})
}

type storeTx struct {
	db        *gorm.DB
	postgis   bool
	batchSize int
}

func (t *storeTx) TableExists(ctx context.Context, key reconcile.TableKey) (bool, error) {
	return TableExists(ctx, t.db, key)
}

func (t *storeTx) RowExists(ctx context.Context, key reconcile.TableKey, globalID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE globalid = ?)", QualifiedName(key))
	if err := t.db.WithContext(ctx).Raw(query, globalID).Row().Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *storeTx) Insert(ctx context.Context, key reconcile.TableKey, record reconcile.ColumnRecord) error {
	names := make([]string, len(record.Columns))
	holders := make([]string, len(record.Columns))
	args := make([]any, len(record.Columns))
	for i, c := range record.Columns {
		names[i] = pq.QuoteIdentifier(c.Name)
		holders[i] = t.placeholder(c)
		args[i] = c.Value
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QualifiedName(key), strings.Join(names, ", "), strings.Join(holders, ", "))
	return t.db.WithContext(ctx).Exec(query, args...).Error
}

func (t *storeTx) Update(ctx context.Context, key reconcile.TableKey, globalID string, record reconcile.ColumnRecord) error {
	if len(record.Columns) == 0 {
		return nil
	}

	sets := make([]string, len(record.Columns))
	args := make([]any, 0, len(record.Columns)+1)
	for i, c := range record.Columns {
		sets[i] = pq.QuoteIdentifier(c.Name) + " = " + t.placeholder(c)
		args = append(args, c.Value)
	}
	args = append(args, globalID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE globalid = ?", QualifiedName(key), strings.Join(sets, ", "))
	return t.db.WithContext(ctx).Exec(query, args...).Error
}

func (t *storeTx) EachGlobalID(ctx context.Context, key reconcile.TableKey, fn func(string) error) error {
	rows, err := t.db.WithContext(ctx).Raw(fmt.Sprintf("SELECT globalid FROM %s", QualifiedName(key))).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return err
		}
		if !id.Valid {
			continue
		}
		if err := fn(id.String); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (t *storeTx) Delete(ctx context.Context, key reconcile.TableKey, globalIDs []string) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE globalid IN ?", QualifiedName(key))

	var deleted int64
	for start := 0; start < len(globalIDs); start += t.batchSize {
		end := start + t.batchSize
		if end > len(globalIDs) {
			end = len(globalIDs)
		}
		res := t.db.WithContext(ctx).Exec(query, globalIDs[start:end])
		if res.Error != nil {
			return deleted, res.Error
		}
		deleted += res.RowsAffected
	}
	return deleted, nil
}

// placeholder renders the bind expression of a column; PostGIS geometries are parsed from WKT.
func (t *storeTx) placeholder(c reconcile.Column) string {
	if c.SRID > 0 && t.postgis {
		return "ST_GeomFromText(?, " + strconv.Itoa(c.SRID) + ")"
	}
	return "?"
}
