package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainlog_http_requests_total",
			Help: "Number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "trainlog_http_request_duration_seconds",
			Help: "Time taken to serve HTTP requests",
		},
	)

	StoreMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainlog_store_mutations_total",
			Help: "Number of record store mutations by operation",
		},
		[]string{"op"},
	)

	RecordCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trainlog_records",
			Help: "Number of training records currently in the store",
		},
	)

	TotalHours = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trainlog_record_hours_total",
			Help: "Sum of hours across all stored training records",
		},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, StoreMutations, RecordCount, TotalHours)
}
