// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostic_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diagnostic_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "diagnostic_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostic_predictions_total",
			Help: "Predictions served, by outcome and confidence band",
		},
		[]string{"outcome", "confidence"},
	)

	predictionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diagnostic_prediction_errors_total",
			Help: "Predictions that failed before producing a result",
		},
	)

	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostic_llm_requests_total",
			Help: "Language model calls, by provider, mode and status",
		},
		[]string{"provider", "mode", "status"},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "diagnostic_llm_request_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider", "mode"},
	)

	llmStreamChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostic_llm_stream_chunks_total",
			Help: "Text fragments forwarded to streaming clients",
		},
		[]string{"provider"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency labelled by the matched
// route template, so path parameters never become label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush keeps streamed report chunks flowing through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RecordPrediction counts a completed prediction.
func RecordPrediction(hasDiabetes bool, confidence string) {
	outcome := "negative"
	if hasDiabetes {
		outcome = "positive"
	}
	predictionsTotal.WithLabelValues(outcome, confidence).Inc()
}

func RecordPredictionError() {
	predictionErrors.Inc()
}

// RecordLLMRequest counts one language model call; mode is "invoke" or "stream".
func RecordLLMRequest(provider, mode string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	llmRequestsTotal.WithLabelValues(provider, mode, status).Inc()
	llmRequestDuration.WithLabelValues(provider, mode).Observe(duration.Seconds())
}

func RecordStreamChunks(provider string, n int) {
	if n > 0 {
		llmStreamChunks.WithLabelValues(provider).Add(float64(n))
	}
}
