// Package metrics exposes Prometheus collectors for the HTTP surface and
// the sync, intake and notification pipelines. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	inquiries     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	seeds         prometheus.Counter
	syncSessions  prometheus.Gauge
}

// New registers every collector on a private registry under namespace.
// Characters not allowed in metric names become underscores.
func New(namespace string) *Metrics {
	namespace = sanitize(namespace)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inquiries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inquiries_submitted_total",
			Help:      "Public inquiry submissions by outcome.",
		}, []string{"outcome"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Inquiry notifications by relay driver and outcome.",
		}, []string{"driver", "outcome"}),
		snapshots: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_snapshots_total",
			Help:      "Snapshots applied by the sync controller.",
		}, []string{"collection", "source"}),
		seeds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_seeds_total",
			Help:      "Default catalogs seeded into empty tenants.",
		}),
		syncSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_sessions_active",
			Help:      "Open realtime sync sessions.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) InquirySubmitted(err error) {
	if m == nil {
		return
	}
	m.inquiries.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) NotificationSent(driver string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(driver, outcome(err)).Inc()
}

func (m *Metrics) SnapshotApplied(collection string, fromCache bool) {
	if m == nil {
		return
	}
	source := "server"
	if fromCache {
		source = "cache"
	}
	m.snapshots.WithLabelValues(collection, source).Inc()
}

func (m *Metrics) TemplatesSeeded() {
	if m == nil {
		return
	}
	m.seeds.Inc()
}

func (m *Metrics) SyncSessionOpened() {
	if m == nil {
		return
	}
	m.syncSessions.Inc()
}

func (m *Metrics) SyncSessionClosed() {
	if m == nil {
		return
	}
	m.syncSessions.Dec()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func sanitize(namespace string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, namespace)
}
