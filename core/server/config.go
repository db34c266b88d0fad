package server

import "time"

// Config holds configuration for the HTTP status server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty leaves the API open.
	ApiKey string `mapstructure:"api_key" default:""`
	// IntervalMinutes schedules a run every N minutes while serving. Zero disables the schedule.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"0"`
}

// Interval returns the schedule period, or zero when scheduling is off.
func (c Config) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}
