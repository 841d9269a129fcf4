package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerCalls   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	upstreamRetries *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "midas_provider_calls_total",
				Help: "Upstream provider calls by provider, data kind and outcome",
			},
			[]string{"provider", "kind", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "midas_feature_cache_lookups_total",
				Help: "Feature cache lookups by result",
			},
			[]string{"result"},
		),
		upstreamRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "midas_upstream_retries_total",
				Help: "Retried gateway calls by target service",
			},
			[]string{"target"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "midas_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "midas_last_price",
				Help: "Last resolved price for a ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "midas_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderCall records one upstream provider attempt.
func (r *Recorder) RecordProviderCall(provider, kind, outcome string) {
	r.providerCalls.WithLabelValues(provider, kind, outcome).Inc()
}

// RecordCacheLookup records a feature cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordUpstreamRetry records a retried gateway call.
func (r *Recorder) RecordUpstreamRetry(target string) {
	r.upstreamRetries.WithLabelValues(target).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last resolved price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
