// Package metrics exposes Prometheus counters for the registration service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "velo_registration"

// Metrics owns its own registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	registrations  *prometheus.CounterVec
	mirrorFailures *prometheus.CounterVec
	rosterChanges  *prometheus.CounterVec
	emails         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result (ok, invalid, error).",
		}, []string{"result"}),
		mirrorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_failures_total",
			Help:      "Failed best-effort copies of a registration, by sink.",
		}, []string{"sink"}),
		rosterChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_changes_total",
			Help:      "Admin roster mutations by operation.",
		}, []string{"op"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Admin email requests by provider.",
		}, []string{"provider"}),
	}
	m.registry.MustRegister(
		m.registrations,
		m.mirrorFailures,
		m.rosterChanges,
		m.emails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) MirrorFailure(sink string) {
	if m == nil {
		return
	}
	m.mirrorFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) RosterChange(op string, n int) {
	if m == nil {
		return
	}
	m.rosterChanges.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) Email(provider string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(provider).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
