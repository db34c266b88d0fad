package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"floorplan-sync/core/arcgis"
	"floorplan-sync/core/database"
	"floorplan-sync/core/logger"
	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/server"
	"floorplan-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// GIS holds the remote feature layer connection.
	GIS arcgis.Config `mapstructure:"gis"`
	// Database holds configuration for the destination database.
	Database database.Config `mapstructure:"database"`
	// DayInterval is the look-back window of the recent batch, in days.
	DayInterval int `mapstructure:"day_interval" default:"7"`
	// Sync holds the reconciliation tuning options.
	Sync reconcile.Config `mapstructure:"sync"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Storage holds configuration for the run report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the HTTP status server.
	Server server.Config `mapstructure:"server"`
}

// LoadConfig loads configuration from a .env file, an optional config.yaml and the environment.
// path is either a directory searched for config.yaml or the path of a YAML file.
func LoadConfig(path string) (*Config, error) {
	dir := path
	isFile := strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
	if isFile {
		dir = filepath.Dir(path)
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	if isFile {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if isFile || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. GIS_PASSWORD -> gis.password)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DayInterval < 0 {
		errs = append(errs, fmt.Errorf("day_interval must be >= 0, got %d", c.DayInterval))
	}
	if c.GIS.URL == "" {
		errs = append(errs, errors.New("gis.url is required"))
	}
	if c.GIS.FeatureLayerID == "" {
		errs = append(errs, errors.New("gis.feature_layer_id is required"))
	}
	if !c.Database.Valid() {
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if err := c.Sync.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required when storage is enabled"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
