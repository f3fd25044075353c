package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "demprobe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "demprobe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "demprobe",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Lookup exchanges by endpoint path and terminal outcome.",
		},
		[]string{"path", "outcome"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "demprobe",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Lookup exchange duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "outcome"},
	)
	records = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "demprobe",
			Subsystem: "exchange",
			Name:      "records_total",
			Help:      "Records sent and decoded by direction.",
		},
		[]string{"path", "direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, exchanges, exchangeDuration, records)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordExchange counts one terminal exchange. outcome is a transport state name.
func RecordExchange(path, outcome string, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(path, outcome).Inc()
	exchangeDuration.WithLabelValues(path, outcome).Observe(duration.Seconds())
}

func RecordRecords(path string, sent, received int) {
	RegisterMetrics()
	records.WithLabelValues(path, "sent").Add(float64(sent))
	records.WithLabelValues(path, "received").Add(float64(received))
}
