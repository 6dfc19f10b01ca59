package core

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sigco/pkg/domain"
)

const outcomeCommitted = "committed"

type engineMetrics struct {
	transactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	queued       prometheus.Gauge
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	m := &engineMetrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigco_transactions_total",
			Help: "Transactions executed by the engine, by catalog name and outcome.",
		}, []string{"name", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigco_transaction_duration_seconds",
			Help:    "Wall time from load to save for each transaction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"name"}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sigco_transactions_queued",
			Help: "Transactions submitted but not yet picked up by the writer.",
		}),
	}
	if reg == nil {
		return m
	}
	m.transactions = register(reg, m.transactions)
	m.duration = register(reg, m.duration)
	m.queued = register(reg, m.queued)
	return m
}

// register returns the already registered collector when an equivalent one
// exists, so several engines can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *engineMetrics) observe(name string, err error, elapsed time.Duration) {
	outcome := outcomeCommitted
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	m.transactions.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}
