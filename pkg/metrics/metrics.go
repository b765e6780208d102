package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets for API response times ranging from milliseconds to tens of seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	RatingSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_rating_submissions_total",
			Help: "Total consultation rating submissions by outcome",
		},
		[]string{"status"},
	)

	RatingChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_rating_checks_total",
			Help: "Total rating eligibility checks by outcome",
		},
		[]string{"status"},
	)

	RatingValidationViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_rating_validation_violations_total",
			Help: "Total rejected rating fields by field and violation kind",
		},
		[]string{"field", "kind"},
	)

	RatingScores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_rating_scores_total",
			Help: "Accepted ratings by score",
		},
		[]string{"score"},
	)

	RatingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "consultation_rating_submission_duration_seconds",
			Help:    "Rating submission processing time in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	TriggerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_trigger_calls_total",
			Help: "Outgoing event trigger calls by event type and outcome",
		},
		[]string{"event", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// RecordScore counts an accepted rating score
func RecordScore(score int) {
	RatingScores.WithLabelValues(strconv.Itoa(score)).Inc()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
