package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the content registry.
type Metrics struct {
	Registered    prometheus.Counter
	Verifications *prometheus.CounterVec
	ProofWait     prometheus.Histogram
}

// New registers content registry collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proofwall_content_registered_total",
			Help: "Content records registered",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofwall_content_verifications_total",
			Help: "Proof verification attempts, labeled by outcome",
		}, []string{"outcome"}),
		ProofWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofwall_proof_wait_seconds",
			Help:    "Time spent waiting on the external prover",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
	}
}

func (m *Metrics) IncRegistered() {
	if m == nil {
		return
	}
	m.Registered.Inc()
}

// ObserveVerification records the outcome and how long the prover wait took.
func (m *Metrics) ObserveVerification(outcome string, waited time.Duration) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
	m.ProofWait.Observe(waited.Seconds())
}
