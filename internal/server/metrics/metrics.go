package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by handler and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"handler", "status"},
	)

	// BackendDuration observes model backend invocation latency by model name.
	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_backend_duration_seconds",
			Help:    "Model backend invocation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// BackendErrorsTotal counts failed model backend invocations by model name.
	BackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_backend_errors_total",
			Help: "Total number of failed model backend invocations",
		},
		[]string{"model"},
	)
)

// ObserveRequest records one handled request.
func ObserveRequest(handler string, status int) {
	RequestsTotal.WithLabelValues(handler, strconv.Itoa(status)).Inc()
}

// ObserveBackend records one backend invocation.
func ObserveBackend(model string, start time.Time, err error) {
	BackendDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		BackendErrorsTotal.WithLabelValues(model).Inc()
	}
}
