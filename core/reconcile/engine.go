package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	snapshotFields = []string{AttrLocation, AttrFloor, AttrGlobalID}
	recentFields   = []string{"*"}
)

// Engine reconciles the remote layer into the per-location, per-floor tables.
type Engine struct {
	source    Source
	store     Store
	projector Projector
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewEngine wires an engine. A nil logger is replaced by a no-op logger.
func NewEngine(source Source, store Store, projector Projector, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SnapshotFilter == "" {
		opts.SnapshotFilter = DefaultSnapshotFilter
	}
	return &Engine{
		source:    source,
		store:     store,
		projector: projector,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// fetched holds everything read from the source before the unit of work opens.
type fetched struct {
	snapshot *Snapshot
	recent   []Feature
	domains  DomainMap
}

// run carries the per-run mutable state.
type run struct {
	report *RunReport
	state  RunState
	cache  *ExistenceCache
	// upserted tracks identifiers written into each table during this run.
	upserted map[TableKey]map[string]struct{}
}

// Run performs one reconciliation. The returned report is never nil.
// On failure the error is a *FatalRunError and nothing was committed.
func (e *Engine) Run(ctx context.Context) (*RunReport, error) {
	r := &run{
		report: &RunReport{
			ID:            uuid.NewString(),
			StartedAt:     e.now(),
			DryRun:        e.opts.DryRun,
			Skipped:       []Skip{},
			MissingTables: []string{},
		},
		upserted: make(map[TableKey]map[string]struct{}),
	}
	log := e.logger.With(zap.String("run_id", r.report.ID))

	e.transition(log, r, StateFetching)
	data, err := e.fetch(ctx, log, r)
	if err != nil {
		return e.fail(log, r, err)
	}

	err = e.store.Transaction(ctx, func(tx Tx) error {
		r.cache = NewExistenceCache(tx.TableExists)

		if len(data.recent) > 0 {
			e.transition(log, r, StateUpserting)
			if err := e.upsert(ctx, log, r, tx, data); err != nil {
				return err
			}
		} else {
			log.Info("No recently edited features, skipping upsert phase")
		}

		e.transition(log, r, StateDeleting)
		if err := e.delete(ctx, log, r, tx, data.snapshot); err != nil {
			return err
		}

		e.transition(log, r, StateCommitting)
		if e.opts.DryRun {
			return errDryRun
		}
		return nil
	})

	if errors.Is(err, errDryRun) {
		r.report.State = StateRolledBack
		r.report.FinishedAt = e.now()
		log.Info("Dry run finished, changes rolled back", reportFields(r.report)...)
		return r.report, nil
	}
	if err != nil {
		return e.fail(log, r, err)
	}

	r.report.State = StateCommitted
	r.report.FinishedAt = e.now()
	log.Info("Run committed", reportFields(r.report)...)
	return r.report, nil
}

func (e *Engine) transition(log *zap.Logger, r *run, next RunState) {
	log.Debug("Run state changed", zap.String("from", string(r.state)), zap.String("to", string(next)))
	r.state = next
}

func (e *Engine) fail(log *zap.Logger, r *run, err error) (*RunReport, error) {
	fatal := &FatalRunError{Phase: r.state, Err: err}
	r.report.State = StateRolledBack
	r.report.FailedPhase = r.state
	r.report.Error = err.Error()
	r.report.FinishedAt = e.now()
	log.Error("Run rolled back", append(reportFields(r.report), zap.Error(err))...)
	return r.report, fatal
}

// fetch reads the snapshot, the recent batch and the domains concurrently.
func (e *Engine) fetch(ctx context.Context, log *zap.Logger, r *run) (*fetched, error) {
	var (
		all     []Feature
		recent  []Feature
		domains DomainMap
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = e.source.QueryAll(gctx, e.opts.SnapshotFilter, snapshotFields)
		if err != nil {
			return fmt.Errorf("query snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = e.source.QueryRecent(gctx, e.opts.DayInterval, recentFields, e.opts.SpatialReference)
		if err != nil {
			return fmt.Errorf("query recent features: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		domains, err = e.source.FieldDomains(gctx)
		if err != nil {
			return fmt.Errorf("load field domains: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if domains == nil {
		domains = NewDomainMap()
	}

	snapshot, skipped := BuildSnapshot(all)
	for _, s := range skipped {
		log.Warn("Snapshot feature skipped", zap.String("global_id", s.GlobalID), zap.String("reason", s.Reason))
		r.report.addSkip(s)
	}

	r.report.SnapshotFeatures = snapshot.Len()
	r.report.SnapshotTables = snapshot.Tables()
	r.report.RecentFeatures = len(recent)

	log.Info("Fetched source data",
		zap.Int("snapshot_features", snapshot.Len()),
		zap.Int("snapshot_tables", snapshot.Tables()),
		zap.Int("recent_features", len(recent)),
		zap.Int("domains", domains.Fields()),
	)

	return &fetched{snapshot: snapshot, recent: recent, domains: domains}, nil
}

// upsert writes the recent batch in source order.
func (e *Engine) upsert(ctx context.Context, log *zap.Logger, r *run, tx Tx, data *fetched) error {
	for _, f := range data.recent {
		if err := e.upsertOne(ctx, log, r, tx, f, data.domains); err != nil {
			var skip *SkippableFeatureError
			if errors.As(err, &skip) {
				log.Warn("Feature skipped",
					zap.String("global_id", skip.GlobalID),
					zap.String("table", skip.Table),
					zap.String("reason", skip.Reason),
				)
				r.report.addSkip(skip)
				continue
			}
			return err
		}
	}
	return nil
}

func (e *Engine) upsertOne(ctx context.Context, log *zap.Logger, r *run, tx Tx, f Feature, domains DomainMap) error {
	id, err := f.GlobalID()
	if err != nil {
		raw, _ := f.Attributes.Get(AttrGlobalID)
		return &SkippableFeatureError{GlobalID: fmt.Sprint(raw), Reason: err.Error()}
	}

	location, ok := f.Location()
	if !ok {
		return &SkippableFeatureError{GlobalID: id, Reason: "location is absent"}
	}
	floor, ok := f.Floor()
	if !ok {
		return &SkippableFeatureError{GlobalID: id, Reason: "floor is absent"}
	}

	key, err := ResolveTableKey(location, floor)
	if err != nil {
		return &SkippableFeatureError{GlobalID: id, Reason: err.Error()}
	}

	exists, err := r.cache.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check table %s: %w", key, err)
	}
	if !exists {
		return &SkippableFeatureError{GlobalID: id, Table: key.String(), Reason: "table does not exist"}
	}

	record, err := e.projector.Project(f, domains)
	if err != nil {
		return fmt.Errorf("project feature %s: %w", id, err)
	}

	present, err := tx.RowExists(ctx, key, id)
	if err != nil {
		return fmt.Errorf("look up %s in %s: %w", id, key, err)
	}

	if present {
		if err := tx.Update(ctx, key, id, e.updateColumns(record)); err != nil {
			return fmt.Errorf("update %s in %s: %w", id, key, err)
		}
		r.report.Updated++
		log.Debug("Feature updated", zap.String("global_id", id), zap.String("table", key.String()))
	} else {
		if err := tx.Insert(ctx, key, record); err != nil {
			return fmt.Errorf("insert %s into %s: %w", id, key, err)
		}
		r.report.Inserted++
		log.Debug("Feature inserted", zap.String("global_id", id), zap.String("table", key.String()))
	}

	ids, ok := r.upserted[key]
	if !ok {
		ids = make(map[string]struct{})
		r.upserted[key] = ids
	}
	ids[id] = struct{}{}
	return nil
}

// updateColumns drops the columns an update never rewrites.
func (e *Engine) updateColumns(record ColumnRecord) ColumnRecord {
	if e.opts.UpdateFloor {
		return record.Without(ColumnGlobalID)
	}
	return record.Without(ColumnGlobalID, ColumnFloor)
}

// delete removes, per snapshot table, the persisted rows that are no longer authoritative.
func (e *Engine) delete(ctx context.Context, log *zap.Logger, r *run, tx Tx, snapshot *Snapshot) error {
	for _, key := range snapshot.Keys() {
		exists, err := r.cache.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("check table %s: %w", key, err)
		}
		if !exists {
			log.Warn("Table does not exist, skipping deletions", zap.String("table", key.String()))
			r.report.MissingTables = append(r.report.MissingTables, key.String())
			continue
		}

		var stale []string
		// Rows are keyed by the canonical form written by upsert, so a persisted id in any
		// other form is a stale duplicate and is compared, and deleted, as stored.
		err = tx.EachGlobalID(ctx, key, func(persisted string) error {
			if snapshot.Contains(key, persisted) {
				return nil
			}
			if _, ok := r.upserted[key][persisted]; ok {
				return nil
			}
			stale = append(stale, persisted)
			return nil
		})
		if err != nil {
			return fmt.Errorf("list rows of %s: %w", key, err)
		}
		if len(stale) == 0 {
			continue
		}

		n, err := tx.Delete(ctx, key, stale)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", key, err)
		}
		r.report.Deleted += int(n)
		log.Info("Deleted stale rows", zap.String("table", key.String()), zap.Int64("count", n))
	}
	return nil
}

func reportFields(r *RunReport) []zap.Field {
	return []zap.Field{
		zap.String("state", string(r.State)),
		zap.Bool("dry_run", r.DryRun),
		zap.Int("inserted", r.Inserted),
		zap.Int("updated", r.Updated),
		zap.Int("deleted", r.Deleted),
		zap.Int("skipped", len(r.Skipped)),
		zap.Int("missing_tables", len(r.MissingTables)),
		zap.Duration("duration", r.Duration()),
	}
}
