// Package metrics provides Prometheus metrics collection for the nutrient
// export service. It exports three metrics for tracking HTTP request
// performance:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// plus a set of export metrics fed by the scheduler:
//   - export_runs_total: Counter with a status label (success/failure/skipped)
//   - export_duration_seconds: Histogram of full conversion runs
//   - export_records: Gauge holding the record count of the last export
//   - export_cells_filled_total: Counter of null cells coerced to zero
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs with partially drained quotas)",
		},
	)

	ExportRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_runs_total",
			Help: "Total spreadsheet export runs by outcome",
		},
		[]string{"status"},
	)

	ExportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Duration of a full spreadsheet conversion run",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ExportRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "export_records",
			Help: "Nutrient records produced by the last successful export",
		},
	)

	ExportCellsFilledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_cells_filled_total",
			Help: "Null or absent numeric cells coerced to zero across all exports",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ExportRunsTotal)
	prometheus.MustRegister(ExportDuration)
	prometheus.MustRegister(ExportRecords)
	prometheus.MustRegister(ExportCellsFilledTotal)
}
