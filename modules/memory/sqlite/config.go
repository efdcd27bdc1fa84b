package sqlite

import (
	"errors"
	"fmt"

	"github.com/flemzord/chefbot/internal/cron"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "conversations.db"
)

// Config holds the SQLite memory module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/conversations.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// OptimizeSchedule is a cron expression for PRAGMA optimize and a WAL
	// checkpoint. Empty disables scheduled maintenance.
	OptimizeSchedule string `yaml:"optimize_schedule"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	var errs []error
	if c.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout))
	}
	if c.OptimizeSchedule != "" {
		if err := cron.ValidateSchedule(c.OptimizeSchedule); err != nil {
			errs = append(errs, fmt.Errorf("sqlite: optimize_schedule: %w", err))
		}
	}
	return errors.Join(errs...)
}
