// Package metrics expone los contadores Prometheus del back-office.
// Todos los métodos aceptan un receptor nil para que los componentes funcionen sin métricas.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores e histogramas del back-office.
type Metrics struct {
	AuthzDecisionsTotal       *prometheus.CounterVec
	LocationEventsTotal       *prometheus.CounterVec
	LocationEventRetriesTotal prometheus.Counter
	LocationEventDuration     *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New crea y registra las métricas en registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_authz_decisions_total",
				Help: "Decisiones de la compuerta de acceso",
			},
			[]string{"kind", "outcome"},
		),
		LocationEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_location_events_total",
				Help: "Eventos de ubicación procesados por resultado",
			},
			[]string{"event", "outcome"},
		),
		LocationEventRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_location_event_retries_total",
				Help: "Reintentos por conflicto de serialización",
			},
		),
		LocationEventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_location_event_duration_seconds",
				Help:    "Duración del procesamiento de un evento de ubicación",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.AuthzDecisionsTotal,
		m.LocationEventsTotal,
		m.LocationEventRetriesTotal,
		m.LocationEventDuration,
	)
	return m
}

// AuthzDecision registra una decisión allow/deny para page o action.
func (m *Metrics) AuthzDecision(kind string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.AuthzDecisionsTotal.WithLabelValues(kind, outcome).Inc()
}

// LocationEvent registra el resultado (ok, not_found, invalid, conflict, internal, replayed) y la duración.
func (m *Metrics) LocationEvent(event, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if event == "" {
		event = "unknown"
	}
	m.LocationEventsTotal.WithLabelValues(event, outcome).Inc()
	m.LocationEventDuration.WithLabelValues(event).Observe(d.Seconds())
}

// LocationEventRetry cuenta un reintento.
func (m *Metrics) LocationEventRetry() {
	if m == nil {
		return
	}
	m.LocationEventRetriesTotal.Inc()
}

// Handler devuelve el handler HTTP de exposición.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
