// Package app provides the shared entry point for the chefbot commands: it
// loads configuration, wires the recipe bot and runs it in the terminal or
// behind the HTTP gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/config"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/gateway"
	"github.com/flemzord/chefbot/internal/security"
	"github.com/flemzord/chefbot/internal/telemetry"
)

// Mode selects which modules a Runtime loads.
type Mode int

const (
	// ModeChat loads every configured module except the gateway.
	ModeChat Mode = iota
	// ModeServe loads every configured module.
	ModeServe
)

// RunParams configures the application.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides both the config's data_dir and the default
	// persistent data directory.
	DataDir string

	// Workspace overrides the default working directory.
	Workspace string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Runtime is a configured chefbot: loaded modules plus the bot built on
// top of them.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Redactor *security.Redactor
	Registry *prometheus.Registry
	Bot      *chat.Bot

	app               *core.App
	shutdownTelemetry telemetry.ShutdownFunc
}

// Setup loads and validates the configuration, loads the modules mode
// selects, wires the bot and starts the modules.
func Setup(ctx context.Context, params RunParams, mode Mode) (*Runtime, error) {
	cfg, cfgPath, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}

	redactor := security.NewRedactor()
	collectSecrets(redactor, cfg.Modules)

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	// Wrap the text handler in a redacting handler to prevent secret leakage in logs.
	innerHandler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, params.Version)
	if err != nil {
		return nil, err
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	workspace := params.Workspace
	if workspace == "" {
		workspace = DefaultWorkspace()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	appCtx := core.NewAppContext(logger, dataDir, workspace)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService("config.path", cfgPath)
	appCtx.RegisterService(gateway.ServiceRegistry, registry)

	fail := func(err error) (*Runtime, error) {
		_ = shutdownTelemetry(context.Background())
		return nil, err
	}

	application := core.NewApp(appCtx)
	ids := moduleIDs(cfg, mode)
	if err := application.LoadModules(ids); err != nil {
		return fail(err)
	}

	bot, err := wireBot(appCtx, cfg, registry, logger)
	if err != nil {
		application.Unload()
		return fail(err)
	}
	appCtx.RegisterService(gateway.ServiceBot, bot)

	if err := application.Start(); err != nil {
		application.Unload()
		return fail(err)
	}

	return &Runtime{
		Config:            cfg,
		Logger:            logger,
		Redactor:          redactor,
		Registry:          registry,
		Bot:               bot,
		app:               application,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// Close stops the modules in reverse order and flushes pending traces.
func (rt *Runtime) Close(ctx context.Context) error {
	return errors.Join(rt.app.Stop(ctx), rt.shutdownTelemetry(ctx))
}

// Serve starts chefbot with the HTTP gateway and blocks until SIGINT or
// SIGTERM is received.
func Serve(params RunParams) error {
	ctx := context.Background()
	rt, err := Setup(ctx, params, ModeServe)
	if err != nil {
		return err
	}
	if _, ok := rt.Config.Modules[string(gateway.ModuleID)]; !ok {
		rt.Logger.Warn("no gateway configured, only background modules are running", "module", gateway.ModuleID)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	rt.Logger.Info("shutdown signal received", "signal", sig.String())
	err = rt.Close(ctx)
	rt.Logger.Info("shutdown complete")
	return err
}

// Chat runs an interactive session on in and out. An empty conversationID
// selects memory.conversation_id from the configuration.
func Chat(ctx context.Context, params RunParams, conversationID string, in io.Reader, out io.Writer) error {
	rt, err := Setup(ctx, params, ModeChat)
	if err != nil {
		return err
	}
	if conversationID == "" {
		conversationID = rt.Config.Memory.ConversationID
	}
	return errors.Join(
		ChatLoop(ctx, rt.Bot, conversationID, in, out),
		rt.Close(context.Background()),
	)
}

// Check loads and validates the configuration at path, then provisions
// every configured module without starting any. It returns the module IDs.
func Check(path string) ([]string, error) {
	cfg, _, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	appCtx := core.NewAppContext(logger, dataDir, DefaultWorkspace())
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	application := core.NewApp(appCtx)
	if err := application.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, err
	}
	defer application.Unload()

	loaded := application.Modules()
	ids := make([]string, len(loaded))
	for i, id := range loaded {
		ids[i] = string(id)
	}
	return ids, nil
}

// LoadConfig resolves, loads, defaults and validates the configuration.
// An empty path is resolved with ResolveConfigPath. It returns the path used.
func LoadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// moduleIDs returns the configured module IDs mode loads.
func moduleIDs(cfg *config.Config, mode Mode) []string {
	ids := config.Resolve(cfg)
	if mode == ModeServe {
		return ids
	}
	kept := ids[:0]
	for _, id := range ids {
		if core.ModuleID(id).Namespace() == "gateway" {
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/chefbot/chefbot.yaml → ~/.config/chefbot/chefbot.yaml → ./chefbot.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "chefbot", "chefbot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "chefbot", "chefbot.yaml"))
	}

	candidates = append(candidates, "chefbot.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %s)", strings.Join(candidates, ", "))
}

// DefaultConfigPath is where `chefbot init` writes when no path is given.
func DefaultConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "chefbot", "chefbot.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "chefbot", "chefbot.yaml")
	}
	return "chefbot.yaml"
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/chefbot if set, otherwise ~/.local/share/chefbot per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, "chefbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chefbot")
}

// DefaultWorkspace returns the current working directory.
func DefaultWorkspace() string {
	dir, _ := os.Getwd()
	return dir
}
