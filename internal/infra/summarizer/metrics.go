package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder records per-provider model call metrics.
// Tests inject a fake; production uses PrometheusSummaryMetrics.
type SummaryMetricsRecorder interface {
	// RecordLength records the generated digest length in characters.
	RecordLength(provider string, length int)

	// RecordDuration records the time spent in one model round trip.
	RecordDuration(provider string, duration time.Duration)

	// RecordOutcome counts a call as success or failure.
	RecordOutcome(provider string, success bool)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus metrics.
type PrometheusSummaryMetrics struct {
	lengthHistogram   *prometheus.HistogramVec
	durationHistogram *prometheus.HistogramVec
	outcomeCounter    *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogramVec returns the already registered collector when one exists.
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusSummaryMetrics returns the process-wide recorder.
// Singleton so that constructing several summarizers does not double-register.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "digest_summary_length_characters",
				Help:    "Distribution of generated digest lengths in characters (Unicode runes)",
				Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000},
			}, []string{"provider"}),
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "digest_model_call_duration_seconds",
				Help:    "Time taken by one summarization model round trip",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}, []string{"provider"}),
			outcomeCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "digest_model_calls_total",
				Help: "Total summarization model calls by provider and status",
			}, []string{"provider", "status"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.RecordLength
func (p *PrometheusSummaryMetrics) RecordLength(provider string, length int) {
	p.lengthHistogram.WithLabelValues(provider).Observe(float64(length))
}

// RecordDuration implements SummaryMetricsRecorder.RecordDuration
func (p *PrometheusSummaryMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordOutcome implements SummaryMetricsRecorder.RecordOutcome
func (p *PrometheusSummaryMetrics) RecordOutcome(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.outcomeCounter.WithLabelValues(provider, status).Inc()
}
