package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	InstitutionsCreated prometheus.Counter
	ParticipantsCreated prometheus.Counter
	AuthFailures        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		InstitutionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "botregistry_institutions_created_total",
			Help: "Total number of institutions created in the registry",
		}),
		ParticipantsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "botregistry_participants_created_total",
			Help: "Total number of participants created in the registry",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "botregistry_auth_failures_total",
			Help: "Total number of failed API key authentication attempts",
		}),
	}
}

// IncrementInstitutionsCreated increments the institutions created counter by 1.
func (m *Metrics) IncrementInstitutionsCreated() {
	m.InstitutionsCreated.Inc()
}

// IncrementParticipantsCreated increments the participants created counter by 1.
func (m *Metrics) IncrementParticipantsCreated() {
	m.ParticipantsCreated.Inc()
}

// IncrementAuthFailures increments the authentication failure counter by 1.
func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}
