package suggest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for suggestion metrics.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeInvalid   = "invalid"
)

// Metrics records suggestion outcomes in Prometheus.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the suggestion metrics on reg. A nil registerer
// defaults to the global Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargeadvisor_suggestions_total",
		Help: "Total number of charging schedule suggestion requests",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargeadvisor_suggestion_duration_seconds",
		Help:    "Time spent waiting on the suggestion backend",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"outcome"})

	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &Metrics{requests: requests, duration: duration}, nil
}

func (m *Metrics) observe(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	// invalid requests never reach the backend
	if outcome != OutcomeInvalid {
		m.duration.WithLabelValues(outcome).Observe(took.Seconds())
	}
}
