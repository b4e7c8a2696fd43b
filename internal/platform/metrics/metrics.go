// Package metrics holds the process wide Prometheus collectors and the
// handler that exposes them
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Detections counts finished detections by modality and the tier that produced them
	Detections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genscan_detections_total",
			Help: "Total number of detections by modality and method",
		},
		[]string{"modality", "method"},
	)

	DetectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genscan_detection_duration_seconds",
			Help:    "Duration of a single detection in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"modality"},
	)

	// TierDowngrades counts per call fallbacks from a richer tier
	TierDowngrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genscan_tier_downgrades_total",
			Help: "Total number of per call tier downgrades",
		},
		[]string{"modality", "from", "to"},
	)

	PersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genscan_scans_persist_errors_total",
			Help: "Total number of scan persistence failures by backend",
		},
		[]string{"backend"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "genscan_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half open, 2 open)",
		},
		[]string{"name"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genscan_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genscan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordDetection records one finished detection
func RecordDetection(modality, method string, d time.Duration) {
	Detections.WithLabelValues(modality, method).Inc()
	DetectionDuration.WithLabelValues(modality).Observe(d.Seconds())
}

// RecordDowngrade records a tier fallback
func RecordDowngrade(modality, from, to string) {
	TierDowngrades.WithLabelValues(modality, from, to).Inc()
}

// RecordPersistError records a failed write to backend ("pg" or "ch")
func RecordPersistError(backend string) {
	PersistErrors.WithLabelValues(backend).Inc()
}

// SetBreakerState publishes a breaker state as its ordinal
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordHTTPRequest records one served request; route is the chi pattern
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler { return promhttp.Handler() }
