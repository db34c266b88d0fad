package server_test

import (
	"testing"
	"time"

	"floorplan-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Interval(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    time.Duration
	}{
		{"Disabled", 0, 0},
		{"Negative", -5, 0},
		{"Hourly", 60, time.Hour},
		{"Short", 15, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{IntervalMinutes: tt.minutes}
			assert.Equal(t, tt.want, c.Interval())
		})
	}
}

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Address())
}
