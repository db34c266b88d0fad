package cmd

import (
	"context"
	"fmt"

	"floorplan-sync/core/arcgis"
	"floorplan-sync/core/config"
	"floorplan-sync/core/database"
	"floorplan-sync/core/logger"
	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/storage"
	"floorplan-sync/feature/report"
	"floorplan-sync/feature/rooms"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runner holds everything a run needs, built once from configuration.
type runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	engine   *reconcile.Engine
	archiver *report.Archiver
}

func newRunner(path string, dryRun bool) (*runner, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	loc, err := cfg.Sync.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	l.Info("Connected to destination database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("name", cfg.Database.Name))

	a := &runner{cfg: cfg, logger: l, db: db}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.archiver = report.NewArchiver(client, cfg.Storage, l)
	}

	opts := reconcile.DefaultOptions()
	opts.DayInterval = cfg.DayInterval
	opts.SpatialReference = cfg.Sync.SpatialReference
	opts.UpdateFloor = cfg.Sync.UpdateFloor
	opts.DryRun = dryRun

	a.engine = reconcile.NewEngine(
		arcgis.NewClient(cfg.GIS),
		database.NewStore(db, cfg.Sync.DeleteBatchSize),
		rooms.NewProjector(rooms.DefaultCodeTables(), cfg.Sync.SpatialReference, loc),
		l,
		opts,
	)
	return a, nil
}

// Run performs one reconciliation and archives its report when storage is enabled.
// Archiving failures are logged and never change the outcome of the run.
func (a *runner) Run(ctx context.Context) (*reconcile.RunReport, error) {
	rep, err := a.engine.Run(ctx)
	if a.archiver != nil && rep != nil {
		if _, archiveErr := a.archiver.Archive(context.WithoutCancel(ctx), rep); archiveErr != nil {
			a.logger.Warn("Failed to archive run report", zap.String("run_id", rep.ID), zap.Error(archiveErr))
		}
	}
	return rep, err
}

// Close releases the database connection and flushes the logger.
func (a *runner) Close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
