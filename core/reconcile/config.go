package reconcile

import (
	"errors"
	"time"
)

// Config holds the sync tuning options.
type Config struct {
	SpatialReference int    `mapstructure:"spatial_reference" default:"31982"`
	UpdateFloor      bool   `mapstructure:"update_floor" default:"true"`
	DeleteBatchSize  int    `mapstructure:"delete_batch_size" default:"500"`
	Timezone         string `mapstructure:"timezone" default:"Local"`
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks the options for consistency.
func (c *Config) Validate() error {
	if c.SpatialReference <= 0 {
		return errors.New("sync.spatial_reference must be positive")
	}
	if c.DeleteBatchSize <= 0 {
		return errors.New("sync.delete_batch_size must be positive")
	}
	if _, err := c.Location(); err != nil {
		return errors.New("sync.timezone: " + err.Error())
	}
	return nil
}

// DefaultSnapshotFilter selects the features that can be keyed to a table.
const DefaultSnapshotFilter = "andar IS NOT NULL AND local IS NOT NULL"

// Options controls a single engine run.
type Options struct {
	// DayInterval is the look-back window, in days, of the recent batch.
	DayInterval int

	// SpatialReference is the output spatial reference requested for geometries.
	SpatialReference int

	// SnapshotFilter restricts the authoritative snapshot query.
	SnapshotFilter string

	// UpdateFloor makes updates rewrite the floor column too.
	UpdateFloor bool

	// DryRun executes the run and rolls it back.
	DryRun bool
}

// DefaultOptions returns the options used by the CLI when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DayInterval:      7,
		SpatialReference: 31982,
		SnapshotFilter:   DefaultSnapshotFilter,
		UpdateFloor:      true,
	}
}
