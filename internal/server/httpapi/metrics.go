package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reason labels for rejected sessions.
const (
	ReasonNoToken = "no_token"
	ReasonExpired = "expired"
	ReasonInvalid = "invalid"
	ReasonOther   = "other"
)

// Metrics holds the API's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SessionRejection *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, plus the standard Go
// and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todokeeper_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todokeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SessionRejection: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todokeeper_session_rejections_total",
				Help: "Requests refused by the session guard, by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.SessionRejection)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) observe(method, route, status string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) rejectSession(err error) {
	reason := ReasonOther
	switch {
	case errors.Is(err, common.ErrNoToken):
		reason = ReasonNoToken
	case errors.Is(err, common.ErrTokenExpired):
		reason = ReasonExpired
	case errors.Is(err, common.ErrInvalidToken):
		reason = ReasonInvalid
	}
	m.SessionRejection.WithLabelValues(reason).Inc()
}
