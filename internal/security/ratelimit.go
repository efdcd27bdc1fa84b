package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a request exceeds the rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Rate limit bucket kinds.
const (
	KindMessage = "message"
	KindAuth    = "auth"
	KindToken   = "token"
)

// RateLimitConfig holds configurable rate limits for the gateway.
type RateLimitConfig struct {
	// MessagesPerMin bounds user turns across all conversations.
	MessagesPerMin int `yaml:"messages_per_min"`

	// AuthPerMin bounds authentication attempts.
	AuthPerMin int `yaml:"auth_per_min"`

	// TokensPerHour bounds completion tokens. 0 = unlimited.
	TokensPerHour int `yaml:"tokens_per_hour"`
}

// rateLimitConfigDefaults returns a config with sensible defaults.
func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		MessagesPerMin: 60,
		AuthPerMin:     30,
	}
}

// RateLimiter implements sliding window rate limiting.
// Each bucket tracks timestamps of recent events within its window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	window time.Duration
	limit  int
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
// Zero-value fields in cfg are replaced with defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	if cfg.MessagesPerMin <= 0 {
		cfg.MessagesPerMin = defaults.MessagesPerMin
	}
	if cfg.AuthPerMin <= 0 {
		cfg.AuthPerMin = defaults.AuthPerMin
	}

	rl := &RateLimiter{
		now: time.Now,
		buckets: map[string]*bucket{
			KindMessage: {window: time.Minute, limit: cfg.MessagesPerMin},
			KindAuth:    {window: time.Minute, limit: cfg.AuthPerMin},
		},
	}

	if cfg.TokensPerHour > 0 {
		rl.buckets[KindToken] = &bucket{window: time.Hour, limit: cfg.TokensPerHour}
	}

	return rl
}

// Allow checks whether an event of the given kind is allowed.
// Returns nil if allowed, ErrRateLimited if the limit is exceeded.
// Unknown kinds are never limited.
func (rl *RateLimiter) Allow(kind string) error {
	return rl.AllowN(kind, 1)
}

// AllowN checks whether n events of the given kind are allowed.
// Useful for token counting where a single request consumes multiple tokens.
func (rl *RateLimiter) AllowN(kind string, n int) error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[kind]
	if !ok {
		return nil
	}

	now := rl.now()
	b.evict(now)

	if len(b.events)+n > b.limit {
		return ErrRateLimited
	}

	for range n {
		b.events = append(b.events, now)
	}
	return nil
}

// evict removes events outside the sliding window.
func (b *bucket) evict(now time.Time) {
	cutoff := now.Add(-b.window)
	// Events are chronologically ordered.
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
