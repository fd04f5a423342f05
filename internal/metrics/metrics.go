// Package metrics owns the Prometheus registry of the service.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const namespace = "stockledger"

// Metrics groups the counters exported at /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	stockChanges *prometheus.CounterVec
	logEntries   prometheus.Counter
	httpRequests *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stockChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_changes_total",
			Help:      "Stock change requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		logEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_entries_total",
			Help:      "Log entries appended to the operation log.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stockChanges,
		m.logEntries,
		m.httpRequests,
	)
	return m
}

// ObserveStockChange counts one ledger outcome.
func (m *Metrics) ObserveStockChange(op models.Operation, outcome string) {
	if !op.Valid() {
		op = "invalid"
	}
	m.stockChanges.WithLabelValues(string(op), outcome).Inc()
}

// EntryRecorded counts appended log entries.
func (m *Metrics) EntryRecorded(_ context.Context, _ models.LogEntry) {
	m.logEntries.Inc()
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
