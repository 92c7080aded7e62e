package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface and the
// dataset lifecycle. A fresh registry is used so tests can create
// independent instances without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	DatasetRows         prometheus.Gauge
	DatasetRejectedRows prometheus.Gauge
	DatasetReloads      prometheus.Counter
	DatasetReloadErrors prometheus.Counter
}

// NewMetrics creates a metrics set backed by its own registry,
// including the standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zeptopulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zeptopulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "zeptopulse",
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Number of valid order rows in the active dataset snapshot.",
		}),
		DatasetRejectedRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "zeptopulse",
			Subsystem: "dataset",
			Name:      "rejected_rows",
			Help:      "Number of malformed rows rejected while loading the active snapshot.",
		}),
		DatasetReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zeptopulse",
			Subsystem: "dataset",
			Name:      "reloads_total",
			Help:      "Dataset reload attempts that produced a new snapshot.",
		}),
		DatasetReloadErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zeptopulse",
			Subsystem: "dataset",
			Name:      "reload_errors_total",
			Help:      "Dataset reload attempts that failed.",
		}),
	}
}

// Handler returns the HTTP handler serving this registry in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDataset records the shape of the active dataset snapshot.
func (m *Metrics) ObserveDataset(rows, rejected int) {
	m.DatasetRows.Set(float64(rows))
	m.DatasetRejectedRows.Set(float64(rejected))
}
