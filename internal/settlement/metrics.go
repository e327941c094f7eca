package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts payment outcomes seen by the gate.
type Metrics struct {
	Payments *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Payments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_settlement_payments_total",
			Help: "Payment attempts at pay routes, labeled by tier and outcome",
		}, []string{"tier", "outcome"}),
	}
}

func (m *Metrics) IncPayment(tier, outcome string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(tier, outcome).Inc()
}
