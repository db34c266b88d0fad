package reconcile

import "context"

// Source is the remote, authoritative feature layer.
type Source interface {
	// QueryAll returns every feature matching where, with only fields populated and no geometry.
	QueryAll(ctx context.Context, where string, fields []string) ([]Feature, error)

	// QueryRecent returns every feature edited within the last sinceDays days, with full
	// attributes and Z-aware geometry projected to outSR.
	QueryRecent(ctx context.Context, sinceDays int, fields []string, outSR int) ([]Feature, error)

	// FieldDomains returns the coded-value domains declared by the layer.
	FieldDomains(ctx context.Context) (DomainMap, error)
}

// Store opens units of work against the destination database.
type Store interface {
	// Transaction runs fn inside a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations the engine performs inside a unit of work.
type Tx interface {
	TableExists(ctx context.Context, key TableKey) (bool, error)
	RowExists(ctx context.Context, key TableKey, globalID string) (bool, error)
	Insert(ctx context.Context, key TableKey, record ColumnRecord) error
	// Update overwrites the columns of record on the row identified by globalID.
	Update(ctx context.Context, key TableKey, globalID string, record ColumnRecord) error
	// EachGlobalID streams the identifiers persisted in key.
	EachGlobalID(ctx context.Context, key TableKey, fn func(globalID string) error) error
	// Delete removes the rows identified by globalIDs and returns how many were removed.
	Delete(ctx context.Context, key TableKey, globalIDs []string) (int64, error)
}

// Projector turns a feature into the columns of its destination row.
type Projector interface {
	Project(f Feature, domains DomainMap) (ColumnRecord, error)
}
