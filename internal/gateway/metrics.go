package gateway

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks gateway-level counters using atomic operations for lock-free concurrency.
type Metrics struct {
	requests     atomic.Int64
	messages     atomic.Int64
	replies      atomic.Int64
	errors       atomic.Int64
	rateLimited  atomic.Int64
	wsActive     atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// RecordRequest records an inbound HTTP request.
func (m *Metrics) RecordRequest() {
	m.requests.Add(1)
}

// RecordMessage records an inbound user turn.
func (m *Metrics) RecordMessage() {
	m.messages.Add(1)
}

// RecordReply records a successful bot reply.
func (m *Metrics) RecordReply(latency time.Duration) {
	m.replies.Add(1)
	m.totalLatency.Add(int64(latency))
}

// RecordError records a failed turn.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// RecordRateLimited records a rejected turn.
func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Add(1)
}

func (m *Metrics) wsOpened() { m.wsActive.Add(1) }
func (m *Metrics) wsClosed() { m.wsActive.Add(-1) }

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	replies := m.replies.Load()
	snap := MetricsSnapshot{
		Requests:    m.requests.Load(),
		Messages:    m.messages.Load(),
		Replies:     replies,
		Errors:      m.errors.Load(),
		RateLimited: m.rateLimited.Load(),
		WebSockets:  m.wsActive.Load(),
	}
	if replies > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / replies)
	}
	return snap
}

// Register exposes the counters to Prometheus. The collectors read the
// atomics at scrape time. Registering twice with the same registry is not
// an error.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	counter := func(name, help string, v *atomic.Int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "chefbot",
			Subsystem: "gateway",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(v.Load()) })
	}
	collectors := []prometheus.Collector{
		counter("requests_total", "HTTP requests received.", &m.requests),
		counter("messages_total", "User turns received.", &m.messages),
		counter("replies_total", "Bot replies sent.", &m.replies),
		counter("errors_total", "Turns that failed.", &m.errors),
		counter("rate_limited_total", "Turns rejected by the rate limiter.", &m.rateLimited),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "chefbot",
			Subsystem: "gateway",
			Name:      "websocket_connections",
			Help:      "Open WebSocket chat connections.",
		}, func() float64 { return float64(m.wsActive.Load()) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Requests    int64         `json:"requests"`
	Messages    int64         `json:"messages"`
	Replies     int64         `json:"replies"`
	Errors      int64         `json:"errors"`
	RateLimited int64         `json:"rate_limited"`
	WebSockets  int64         `json:"websockets"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
