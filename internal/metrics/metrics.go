// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "livetsstemme",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "livetsstemme",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "livetsstemme",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	storiesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "livetsstemme",
			Subsystem: "stories",
			Name:      "recorded_total",
			Help:      "Recorded stories by detected audio quality.",
		},
		[]string{"quality"},
	)

	voiceClones = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "livetsstemme",
			Subsystem: "voice",
			Name:      "clones_total",
			Help:      "Voice clone attempts by outcome.",
		},
		[]string{"outcome"},
	)

	purged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "livetsstemme",
			Subsystem: "jobs",
			Name:      "purged_total",
			Help:      "Records cleaned up by the purge job.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		storiesRecorded,
		voiceClones,
		purged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func StoryRecorded(quality string) {
	storiesRecorded.WithLabelValues(quality).Inc()
}

// VoiceClone outcomes: ok, rejected, unconfigured, failed.
func VoiceClone(outcome string) {
	voiceClones.WithLabelValues(outcome).Inc()
}

func Purged(kind string, n int) {
	purged.WithLabelValues(kind).Add(float64(n))
}

// Middleware records request metrics under the route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
