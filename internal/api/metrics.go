package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry             *prometheus.Registry
	requestTotal         *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	rateLimitRejected    *prometheus.CounterVec
	compressionsTotal    *prometheus.CounterVec
	inputBytesTotal      *prometheus.CounterVec
	outputBytesTotal     *prometheus.CounterVec
	bytesSavedTotal      prometheus.Counter
	pixelsProcessedTotal prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpress_api_requests_total",
			Help: "Total HTTP requests handled by the API.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixelpress_api_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpress_api_rate_limit_rejections_total",
			Help: "Total API requests rejected by rate limiting.",
		}, []string{"route"}),
		compressionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpress_compressions_total",
			Help: "Upload outcomes by detected format and result kind.",
		}, []string{"format", "result"}),
		inputBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpress_compression_input_bytes_total",
			Help: "Bytes received in successfully compressed uploads.",
		}, []string{"format"}),
		outputBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpress_compression_output_bytes_total",
			Help: "Bytes returned for successfully compressed uploads.",
		}, []string{"format"}),
		bytesSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpress_usage_bytes_saved_total",
			Help: "Total bytes saved across successful compressions.",
		}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpress_usage_pixels_processed_total",
			Help: "Total pixels processed across successful compressions.",
		}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.rateLimitRejected,
		m.compressionsTotal,
		m.inputBytesTotal,
		m.outputBytesTotal,
		m.bytesSavedTotal,
		m.pixelsProcessedTotal,
	)
	return m
}

func (m *metrics) metricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) withHTTPMetrics(routeLabel func(string) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routeLabel(r.URL.Path)
		status := statusLabel(recorder.status)

		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (m *metrics) observeOutcome(outcome domain.Outcome) {
	if outcome.Failure != nil {
		m.compressionsTotal.WithLabelValues("unknown", string(outcome.Failure.Kind)).Inc()
		return
	}
	if outcome.Success == nil {
		return
	}

	c := outcome.Success
	format := c.Format.String()
	m.compressionsTotal.WithLabelValues(format, "ok").Inc()
	m.inputBytesTotal.WithLabelValues(format).Add(float64(c.OriginalSize))
	m.outputBytesTotal.WithLabelValues(format).Add(float64(len(c.Data)))
	m.pixelsProcessedTotal.Add(float64(int64(c.Width) * int64(c.Height)))

	if saved := c.OriginalSize - int64(len(c.Data)); saved > 0 {
		m.bytesSavedTotal.Add(float64(saved))
	}
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
