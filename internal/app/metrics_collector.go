package app

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

const metricsNamespace = "templates"

type MetricsCollector struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	published   *prometheus.CounterVec
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
	audited     *prometheus.CounterVec
}

func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Template lifecycle operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Template events published after a committed write.",
			},
			[]string{"kind"},
		),
		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "events",
				Name:      "dropped_total",
				Help:      "Events discarded from a full subscriber buffer.",
			},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "events",
				Name:      "subscribers",
				Help:      "Currently connected event stream subscribers.",
			},
		),
		audited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "audit",
				Name:      "records_total",
				Help:      "Audit records handled by the worker.",
			},
			[]string{"kind", "written"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operations,
		m.published,
		m.dropped,
		m.subscribers,
		m.audited,
	)
	return m
}

func (m *MetricsCollector) RecordOperation(operation string, outcome domain.Outcome) {
	m.operations.WithLabelValues(operation, outcome.String()).Inc()
}

func (m *MetricsCollector) RecordPublished(kind domain.EventKind) {
	m.published.WithLabelValues(string(kind)).Inc()
}

func (m *MetricsCollector) EventDropped() {
	m.dropped.Inc()
}

func (m *MetricsCollector) SubscriberAdded() {
	m.subscribers.Inc()
}

func (m *MetricsCollector) SubscriberRemoved() {
	m.subscribers.Dec()
}

func (m *MetricsCollector) RecordAudit(kind domain.EventKind, written bool) {
	m.audited.WithLabelValues(string(kind), strconv.FormatBool(written)).Inc()
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
