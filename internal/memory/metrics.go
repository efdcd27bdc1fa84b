package memory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes memory enforcement counters to Prometheus. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	compactions       prometheus.Counter
	discardedMessages prometheus.Counter
	summaryFailures   prometheus.Counter
	summaryDuration   prometheus.Histogram
	historyTokens     prometheus.Histogram
}

// NewMetrics creates the memory metrics and registers them with reg.
// A nil reg leaves the collectors unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chefbot",
			Subsystem: "memory",
			Name:      "compactions_total",
			Help:      "Number of histories compacted into a summary.",
		}),
		discardedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chefbot",
			Subsystem: "memory",
			Name:      "discarded_messages_total",
			Help:      "Number of messages dropped by the discard fallback.",
		}),
		summaryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chefbot",
			Subsystem: "memory",
			Name:      "summarization_failures_total",
			Help:      "Number of failed summarizer calls.",
		}),
		summaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chefbot",
			Subsystem: "memory",
			Name:      "summarization_duration_seconds",
			Help:      "Latency of summarizer calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		historyTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chefbot",
			Subsystem: "memory",
			Name:      "history_tokens",
			Help:      "Token cost of histories after budget enforcement.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.compactions, m.discardedMessages, m.summaryFailures, m.summaryDuration, m.historyTokens)
	}
	return m
}

func (m *Metrics) compacted() {
	if m == nil {
		return
	}
	m.compactions.Inc()
}

func (m *Metrics) discarded(n int) {
	if m == nil || n == 0 {
		return
	}
	m.discardedMessages.Add(float64(n))
}

func (m *Metrics) summarized(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.summaryDuration.Observe(d.Seconds())
	if err != nil {
		m.summaryFailures.Inc()
	}
}

func (m *Metrics) observeTokens(tokens int) {
	if m == nil {
		return
	}
	m.historyTokens.Observe(float64(tokens))
}
