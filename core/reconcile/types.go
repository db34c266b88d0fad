package reconcile

import (
	"fmt"
	"strings"
	"time"

	"floorplan-sync/core/utils"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"
)

// Attribute names every feature of the source layer is expected to carry.
const (
	AttrGlobalID = "GlobalID"
	AttrLocation = "local"
	AttrFloor    = "andar"
	AttrEditDate = "EditDate"
)

// Destination columns the engine itself relies on.
const (
	ColumnGlobalID = "globalid"
	ColumnFloor    = "andar"
)

// Attributes is an open attribute map. A key that is missing or holds nil is absent.
type Attributes map[string]any

// Get returns the value stored under name and whether it is present.
func (a Attributes) Get(name string) (any, bool) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Feature is one record of the remote layer.
type Feature struct {
	Attributes Attributes
	// Geometry is nil when the source returned no shape.
	Geometry geom.T
}

// GlobalID returns the canonical identifier of the feature.
func (f Feature) GlobalID() (string, error) {
	raw, ok := f.Attributes.Get(AttrGlobalID)
	if !ok {
		return "", fmt.Errorf("attribute %s is absent", AttrGlobalID)
	}
	return CanonicalGlobalID(utils.ToString(raw))
}

// Location returns the location code, reporting false when absent or blank.
func (f Feature) Location() (string, bool) {
	raw, ok := f.Attributes.Get(AttrLocation)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(utils.ToString(raw))
	return s, s != ""
}

// Floor returns the floor number, reporting false when absent or not integral.
func (f Feature) Floor() (int, bool) {
	raw, ok := f.Attributes.Get(AttrFloor)
	if !ok {
		return 0, false
	}
	return utils.ToInt(raw)
}

// CanonicalGlobalID normalizes a GUID to the uppercase, brace-delimited form stored in the
// destination tables.
func CanonicalGlobalID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid global id %q: %w", raw, err)
	}
	return "{" + strings.ToUpper(id.String()) + "}", nil
}

// Column is one projected destination column.
type Column struct {
	Name  string
	Value any
	// SRID is set on geometry columns, whose Value is WKT text or nil.
	SRID int
}

// ColumnRecord is the ordered list of columns written for a feature.
type ColumnRecord struct {
	Columns []Column
}

// Names returns the column names in order.
func (r ColumnRecord) Names() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// Get returns the value of the named column.
func (r ColumnRecord) Get(name string) (any, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of the record minus the named columns.
func (r ColumnRecord) Without(names ...string) ColumnRecord {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := ColumnRecord{Columns: make([]Column, 0, len(r.Columns))}
	for _, c := range r.Columns {
		if _, skip := drop[c.Name]; !skip {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// RunState is the lifecycle stage of a run.
type RunState string

const (
	StateFetching   RunState = "fetching"
	StateUpserting  RunState = "upserting"
	StateDeleting   RunState = "deleting"
	StateCommitting RunState = "committing"
	StateCommitted  RunState = "committed"
	StateRolledBack RunState = "rolled_back"
)

// Skip records one feature or table left untouched by a run.
type Skip struct {
	GlobalID string `json:"global_id,omitempty"`
	Table    string `json:"table,omitempty"`
	Reason   string `json:"reason"`
}

// RunReport summarizes a single reconciliation run.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// State is the final state, committed or rolled_back.
	State RunState `json:"state"`

	// FailedPhase is the state the run was in when it failed.
	FailedPhase RunState `json:"failed_phase,omitempty"`

	DryRun bool `json:"dry_run"`

	SnapshotFeatures int `json:"snapshot_features"`
	SnapshotTables   int `json:"snapshot_tables"`
	RecentFeatures   int `json:"recent_features"`

	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`

	// Skipped lists every feature that was logged and skipped.
	Skipped []Skip `json:"skipped"`

	// MissingTables lists snapshot tables that do not exist in the store.
	MissingTables []string `json:"missing_tables"`

	Error string `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasSkips reports whether any feature or table was skipped.
func (r *RunReport) HasSkips() bool {
	return len(r.Skipped) > 0 || len(r.MissingTables) > 0
}

// Committed reports whether the run's changes were made durable.
func (r *RunReport) Committed() bool {
	return r.State == StateCommitted
}

func (r *RunReport) addSkip(e *SkippableFeatureError) {
	r.Skipped = append(r.Skipped, Skip{GlobalID: e.GlobalID, Table: e.Table, Reason: e.Reason})
}
