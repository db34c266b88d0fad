package database

import (
	"net"
	"net/url"
	"strconv"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverPQ       = "pq"
	DriverSQLite   = "sqlite"
)

// Config holds configuration for the destination database connection.
type Config struct {
	// Driver selects the connection driver: postgres (pgx), pq (lib/pq) or sqlite.
	Driver string `mapstructure:"driver" default:"postgres"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"5432"`
	// User is the database user.
	User string `mapstructure:"user" default:"postgres"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path when Driver is sqlite.
	Name string `mapstructure:"name" default:"postgres"`
	// SSLMode is passed to the server as sslmode.
	SSLMode string `mapstructure:"sslmode" default:"disable"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns TimeoutSeconds, falling back to 30 when unset.
func (c Config) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}

// DSN builds a postgres:// connection URL understood by both pgx and lib/pq.
func (c Config) DSN() string {
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	q.Set("connect_timeout", strconv.Itoa(c.Timeout()))
	q.Set("client_encoding", "UTF8")
	q.Set("application_name", "floorplan-sync")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Valid reports whether Driver names a supported driver.
func (c Config) Valid() bool {
	switch c.Driver {
	case DriverPostgres, DriverPQ, DriverSQLite:
		return true
	}
	return false
}
