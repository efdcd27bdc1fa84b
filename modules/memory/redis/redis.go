// Package redis implements a Redis-backed conversation store, suited to
// several chefbot processes sharing conversations.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/core"
)

// ModuleID is the identifier used in the modules section of the config.
const ModuleID core.ModuleID = "memory.redis"

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
)

// Module provides a Redis-backed memory.MessageStore, registered as a service
// under its module ID.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store
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
		return fmt.Errorf("redis: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if err := m.config.validate(); err != nil {
		return err
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:        m.config.Addr,
		Password:    m.config.Password,
		DB:          m.config.DB,
		DialTimeout: m.config.DialTimeout,
	})
	m.store = NewStore(client, m.config.KeyPrefix, m.config.TTL)

	ctx.RegisterService(string(ModuleID), m.store)

	m.logger.Info("redis memory module provisioned",
		"addr", m.config.Addr,
		"key_prefix", m.config.KeyPrefix,
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), m.config.DialTimeout)
	defer cancel()
	if err := m.store.Ping(pingCtx); err != nil {
		return fmt.Errorf("redis: ping %s: %w", m.config.Addr, err)
	}
	return nil
}

// Start implements core.Starter. The client is connected lazily, so
// starting only records the module as running for App.Stop.
func (m *Module) Start() error {
	m.logger.Info("redis memory module started", "addr", m.config.Addr, "prefix", m.config.KeyPrefix)
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	m.logger.Info("redis memory module stopping")
	return m.store.Close()
}

// Store returns the underlying store. It is nil before Provision.
func (m *Module) Store() *Store {
	return m.store
}
