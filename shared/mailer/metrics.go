package mailer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSent            = "sent"
	outcomeFailed          = "failed"
	outcomeTimeout         = "timeout"
	outcomeBusy            = "busy"
	outcomeAbandonedSent   = "abandoned_sent"
	outcomeAbandonedFailed = "abandoned_failed"
)

type dispatchMetrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

func newDispatchMetrics() *dispatchMetrics {
	return &dispatchMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailer",
			Name:      "dispatch_total",
			Help:      "Mail dispatch attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mailer",
			Name:      "dispatch_duration_seconds",
			Help:      "Time from dispatch to outcome.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mailer",
			Name:      "in_flight",
			Help:      "Transport sends currently running, including abandoned ones.",
		}),
	}
}

func (m *dispatchMetrics) register(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	reg.MustRegister(m.outcomes, m.duration, m.inFlight)
}

func (m *dispatchMetrics) observe(outcome string, elapsed time.Duration) {
	m.outcomes.WithLabelValues(outcome).Inc()
	if outcome != outcomeBusy {
		m.duration.Observe(elapsed.Seconds())
	}
}
