package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the access gateway.
type Metrics struct {
	Challenges *prometheus.CounterVec
	Deliveries *prometheus.CounterVec
}

// New registers access gateway collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		Challenges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_access_challenges_total",
			Help: "402 challenges issued, labeled by tier and identity outcome",
		}, []string{"tier", "identity"}),
		Deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_access_deliveries_total",
			Help: "Paid deliveries, labeled by tier",
		}, []string{"tier"}),
	}
}

func (m *Metrics) IncChallenge(tier, identity string) {
	if m == nil {
		return
	}
	m.Challenges.WithLabelValues(tier, identity).Inc()
}

func (m *Metrics) IncDelivery(tier string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(tier).Inc()
}
