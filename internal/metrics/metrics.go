// Package metrics exposes Prometheus collectors for the pipeline stages.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineDocumentsTotal      *prometheus.CounterVec
	pipelineStageDurationSecs   *prometheus.HistogramVec
	pipelineMarkerWaitSecs      *prometheus.HistogramVec
	probeRequestsTotal          *prometheus.CounterVec
	probeBytesTotal             prometheus.Counter
	probeRequestDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pipelineDocumentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpusmill_documents_total",
				Help: "Total documents handled per stage, labeled by outcome.",
			},
			[]string{"stage", "outcome"},
		)

		pipelineStageDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corpusmill_stage_duration_seconds",
				Help:    "Histogram of full stage run durations.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		)

		pipelineMarkerWaitSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corpusmill_marker_wait_seconds",
				Help:    "Histogram of time spent waiting for readiness markers.",
				Buckets: []float64{0.5, 2, 10, 30, 120, 600},
			},
			[]string{"marker"},
		)

		probeRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpusmill_probe_requests_total",
				Help: "Total probe requests, labeled by status class.",
			},
			[]string{"class"},
		)

		probeBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpusmill_probe_bytes_total",
				Help: "Total bytes downloaded by the endpoint prober.",
			},
		)

		probeRequestDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "corpusmill_probe_request_duration_seconds",
				Help:    "Histogram of probe request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDocument increments the per-stage document counter.
func ObserveDocument(stage, outcome string) {
	Init()
	pipelineDocumentsTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveStageDuration records a completed stage run.
func ObserveStageDuration(stage string, duration time.Duration) {
	Init()
	pipelineStageDurationSecs.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveMarkerWait records time spent blocked on a readiness marker.
func ObserveMarkerWait(marker string, duration time.Duration) {
	Init()
	pipelineMarkerWaitSecs.WithLabelValues(marker).Observe(duration.Seconds())
}

// ObserveProbe records one prober request.
func ObserveProbe(class string, bytes int, duration time.Duration) {
	Init()
	probeRequestsTotal.WithLabelValues(class).Inc()
	if bytes > 0 {
		probeBytesTotal.Add(float64(bytes))
	}
	probeRequestDurationSeconds.Observe(duration.Seconds())
}

// ClassifyStatus groups HTTP status codes for probe metrics.
func ClassifyStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "other"
	}
}
