// Package gateway exposes the recipe bot over HTTP and WebSocket. It binds
// to loopback by default and follows the module system pattern.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/security"
)

// ModuleID identifies the gateway module.
const ModuleID core.ModuleID = "gateway.http"

// Service names resolved from the AppContext at Start.
const (
	ServiceBot      = "chat.bot"
	ServiceRegistry = "metrics.registry"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module. It is a leaf module; nothing imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	audit     *security.AuditLogger
	auditOut  io.Closer
	limiter   *security.RateLimiter
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	bot      *chat.Bot
	gatherer prometheus.Gatherer
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = &Metrics{}
	g.limiter = security.NewRateLimiter(g.config.RateLimit)

	auditCfg := security.AuditLoggerConfig{
		Redactor: security.NewRedactor(g.config.Auth.BearerToken, g.config.Auth.BasicPass),
	}
	if g.config.AuditLog != "" {
		path := g.config.AuditLog
		if !filepath.IsAbs(path) && ctx.DataDir != "" {
			path = filepath.Join(ctx.DataDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("gateway: creating audit log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("gateway: opening audit log: %w", err)
		}
		auditCfg.Writer = f
		g.auditOut = f
	}
	g.audit = security.NewAuditLogger(auditCfg)

	ctx.RegisterService("gateway.metrics", g.metrics)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	host, _, err := net.SplitHostPort(g.config.Bind)
	if err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	if !g.config.Auth.IsConfigured() && !isLoopback(host) {
		g.logger.Warn("gateway bound to a non-loopback address without auth", "bind", g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry and starts the HTTP server.
func (g *Gateway) Start() error {
	svc, ok := g.appCtx.GetService(ServiceBot)
	if !ok {
		return fmt.Errorf("gateway: service %q not registered", ServiceBot)
	}
	bot, ok := svc.(*chat.Bot)
	if !ok {
		return fmt.Errorf("gateway: service %q has type %T", ServiceBot, svc)
	}
	g.bot = bot

	// Metrics are optional; without a registry /metrics is not mounted.
	if svc, ok := g.appCtx.GetService(ServiceRegistry); ok {
		if gatherer, ok := svc.(prometheus.Gatherer); ok {
			g.gatherer = gatherer
		}
		if reg, ok := svc.(prometheus.Registerer); ok {
			if err := g.metrics.Register(reg); err != nil {
				return fmt.Errorf("gateway: registering metrics: %w", err)
			}
		}
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String(), "auth", g.config.Auth.IsConfigured())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	var errs []error
	if g.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
		defer cancel()

		g.logger.Info("gateway shutting down")
		errs = append(errs, g.server.Shutdown(shutdownCtx))
	}
	if g.auditOut != nil {
		errs = append(errs, g.auditOut.Close())
	}
	return errors.Join(errs...)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
