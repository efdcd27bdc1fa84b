// Package sqlite implements a persistent SQLite-backed conversation store.
// It uses modernc.org/sqlite (pure Go, no CGO) in WAL mode.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/cron"
	"gopkg.in/yaml.v3"
)

// ModuleID is the identifier used in the modules section of the config.
const ModuleID core.ModuleID = "memory.sqlite"

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)

	_ cron.Maintainer         = (*Store)(nil)
	_ cron.ConversationLister = (*Store)(nil)
)

// Module provides a SQLite-backed memory.MessageStore, registered as a service
// under its module ID.
type Module struct {
	config    Config
	logger    *slog.Logger
	store     *Store
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	store, err := Open(context.Background(), m.config.Path, Options{
		WAL:         m.config.walEnabled(),
		BusyTimeout: m.config.BusyTimeout,
	})
	if err != nil {
		return err
	}
	m.store = store

	ctx.RegisterService(string(ModuleID), m.store)

	m.logger.Info("sqlite memory module provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.store.Ping(context.Background()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Start implements core.Starter. Scheduled maintenance runs only when
// optimize_schedule is set.
func (m *Module) Start() error {
	if m.config.OptimizeSchedule == "" {
		return nil
	}

	m.scheduler = cron.NewScheduler(m.logger)
	job := &cron.StoreMaintenanceJob{
		Store:        m.store,
		Logger:       m.logger,
		StoreName:    string(ModuleID),
		ScheduleExpr: m.config.OptimizeSchedule,
	}
	if err := m.scheduler.RegisterJob(job); err != nil {
		return fmt.Errorf("sqlite: register maintenance: %w", err)
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("sqlite memory module stopping")
	if m.scheduler != nil {
		if err := m.scheduler.Stop(ctx); err != nil {
			m.logger.Warn("sqlite: stopping scheduler", "error", err)
		}
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

// Store returns the underlying store. It is nil before Provision.
func (m *Module) Store() *Store {
	return m.store
}
