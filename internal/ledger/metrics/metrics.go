package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the audit ledger.
type Metrics struct {
	GrantsAppended *prometheus.CounterVec
	Published      *prometheus.CounterVec
	BreakerOpen    prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		GrantsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_ledger_grants_appended_total",
			Help: "Access grants written to the ledger, labeled by tier",
		}, []string{"tier"}),
		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_ledger_grants_published_total",
			Help: "Grant fan-out attempts, labeled by outcome (ok, failed, skipped)",
		}, []string{"outcome"}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "proofwall_ledger_publisher_breaker_open",
			Help: "1 while the grant publisher circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncAppended(tier string) {
	if m == nil {
		return
	}
	m.GrantsAppended.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncPublished(outcome string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
