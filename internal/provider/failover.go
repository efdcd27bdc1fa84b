package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Failover errors.
var (
	// ErrNoProvider is returned when a Failover is built without entries.
	ErrNoProvider = errors.New("no provider configured")

	// ErrAllProviders wraps the last error once every entry has failed.
	ErrAllProviders = errors.New("all providers failed")
)

// BackoffConfig controls how long a failing provider is skipped.
type BackoffConfig struct {
	// Initial is the cooldown after the first failure. Default: 1s.
	Initial time.Duration

	// Max caps the exponential backoff. Default: 60s.
	Max time.Duration
}

func (c *BackoffConfig) defaults() {
	if c.Initial <= 0 {
		c.Initial = time.Second
	}
	if c.Max <= 0 {
		c.Max = 60 * time.Second
	}
}

// FailoverEntry names one provider of a Failover.
type FailoverEntry struct {
	Name     string
	Provider Provider
}

// Failover is a Provider that tries its entries in order. A retryable error
// (rate limit, provider down) puts the entry in cooldown and moves on to the
// next one; any other error is returned as is.
type Failover struct {
	entries []*failoverEntry
	logger  *slog.Logger
}

var _ Provider = (*Failover)(nil)

// NewFailover builds a Failover. The first entry is the primary and gives
// the model name.
func NewFailover(entries []FailoverEntry, backoff BackoffConfig, logger *slog.Logger) (*Failover, error) {
	if len(entries) == 0 {
		return nil, ErrNoProvider
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	backoff.defaults()

	f := &Failover{logger: logger}
	for _, e := range entries {
		if e.Provider == nil {
			return nil, fmt.Errorf("%w: entry %q has nil provider", ErrNoProvider, e.Name)
		}
		f.entries = append(f.entries, &failoverEntry{
			FailoverEntry: e,
			health:        newCooldown(backoff),
		})
	}
	return f, nil
}

// Complete implements Provider.
func (f *Failover) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr error
	for _, e := range f.candidates() {
		if err := ctx.Err(); err != nil {
			return CompletionResponse{}, err
		}

		resp, err := e.Provider.Complete(ctx, req)
		if err == nil {
			if e.health.recordSuccess() {
				f.logger.Info("provider recovered", "provider", e.Name)
			}
			return resp, nil
		}
		if !IsRetryable(err) {
			return CompletionResponse{}, err
		}

		lastErr = err
		backoff := e.health.recordFailure()
		f.logger.Warn("provider failed, failing over",
			"provider", e.Name,
			"error", err,
			"cooldown", backoff,
		)
	}
	return CompletionResponse{}, fmt.Errorf("%w: %w", ErrAllProviders, lastErr)
}

// candidates returns the entries out of cooldown, in order. When every entry
// is cooling down all of them are returned, so a request is never refused
// without trying.
func (f *Failover) candidates() []*failoverEntry {
	var out []*failoverEntry
	for _, e := range f.entries {
		if e.health.available() {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return f.entries
	}
	return out
}

// ContextWindowSize implements Provider. It is the smallest window of all
// entries, since any of them may receive the history.
func (f *Failover) ContextWindowSize() int {
	size := f.entries[0].Provider.ContextWindowSize()
	for _, e := range f.entries[1:] {
		size = min(size, e.Provider.ContextWindowSize())
	}
	return size
}

// ModelName implements Provider.
func (f *Failover) ModelName() string {
	return f.entries[0].Provider.ModelName()
}

type failoverEntry struct {
	FailoverEntry
	health *cooldown
}

// cooldown tracks consecutive failures of one provider with exponential
// backoff.
type cooldown struct {
	cfg BackoffConfig

	mu       sync.Mutex
	failures int
	backoff  time.Duration
	until    time.Time

	now func() time.Time
}

func newCooldown(cfg BackoffConfig) *cooldown {
	return &cooldown{cfg: cfg, now: time.Now}
}

func (c *cooldown) available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures == 0 || !c.now().Before(c.until)
}

// recordSuccess resets the tracker and reports whether it was failing.
func (c *cooldown) recordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.failures > 0
	c.failures = 0
	c.backoff = 0
	return was
}

// recordFailure extends the cooldown and returns its new length.
func (c *cooldown) recordFailure() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.backoff == 0 {
		c.backoff = c.cfg.Initial
	} else {
		c.backoff = min(c.backoff*2, c.cfg.Max)
	}
	c.until = c.now().Add(c.backoff)
	return c.backoff
}
