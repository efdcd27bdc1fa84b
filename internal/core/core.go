package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// StopTimeout bounds the shutdown of the whole module set when the caller's
// context carries no deadline.
const StopTimeout = 30 * time.Second

// App drives a set of modules through Start and Stop. Modules are loaded in
// configuration order and stopped in reverse.
type App struct {
	ctx     *AppContext
	modules []moduleInstance
	logger  *slog.Logger
}

type moduleInstance struct {
	id      ModuleID
	module  Module
	started bool
	stopped bool
}

// NewApp creates a new App with the given context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules instantiates, provisions, and validates all modules for the
// given IDs in order. If any step fails, already-loaded modules are unloaded.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.Unload()
			return fmt.Errorf("loading module %s: %w", id, err)
		}
		info := mod.ModuleInfo()
		a.modules = append(a.modules, moduleInstance{id: info.ID, module: mod})
		a.logger.Debug("module loaded", "module", string(info.ID))
	}
	return nil
}

// Modules returns the IDs of the loaded modules in load order.
func (a *App) Modules() []ModuleID {
	ids := make([]ModuleID, len(a.modules))
	for i, mi := range a.modules {
		ids[i] = mi.id
	}
	return ids
}

// Start starts all loaded modules that implement Starter, in order.
// If any Start() fails, already-started modules are stopped in reverse order.
func (a *App) Start() error {
	for i := range a.modules {
		mi := &a.modules[i]
		s, ok := mi.module.(Starter)
		if !ok {
			continue
		}
		a.logger.Info("starting module", "module", string(mi.id))
		if err := s.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(mi.id), "error", err)
			_ = a.stop(context.Background(), i-1, false)
			return fmt.Errorf("starting module %s: %w", mi.id, err)
		}
		mi.started = true
	}
	return nil
}

// Stop stops all started modules in reverse order. Errors from individual
// modules are joined; every module gets its Stop call regardless.
func (a *App) Stop(ctx context.Context) error {
	return a.stop(ctx, len(a.modules)-1, false)
}

// Unload stops every loaded module not stopped yet, started or not, in
// reverse order and forgets them. It releases modules after a failed setup,
// including a failed Start.
func (a *App) Unload() {
	_ = a.stop(context.Background(), len(a.modules)-1, true)
	a.modules = nil
}

func (a *App) stop(ctx context.Context, from int, all bool) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, StopTimeout)
		defer cancel()
	}

	var errs []error
	for i := from; i >= 0; i-- {
		mi := &a.modules[i]
		if mi.stopped || (!mi.started && !all) {
			continue
		}
		if s, ok := mi.module.(Stopper); ok {
			a.logger.Debug("stopping module", "module", string(mi.id))
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(mi.id), "error", err)
				errs = append(errs, fmt.Errorf("stopping module %s: %w", mi.id, err))
			}
		}
		mi.started = false
		mi.stopped = true
	}
	return errors.Join(errs...)
}
