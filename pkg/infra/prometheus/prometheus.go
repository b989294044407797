package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Model calls dominate the upper range.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexplain_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lexplain_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	RateLimitDecisions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexplain_rate_limit_decisions_total",
			Help: "Rate limit decisions by outcome (allowed, denied, fail_open)",
		},
		[]string{"outcome"},
	)

	StatsWriteFailures = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexplain_stats_write_failures_total",
			Help: "Usage counter writes that were dropped because the store failed",
		},
		[]string{"counter"},
	)

	ProviderLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lexplain_provider_latency_ms",
			Help:    "Model provider call latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"provider", "result"},
	)
)

const (
	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeFailOpen = "fail_open"
)

type MetricsConfig struct {
	EnableLatency         bool // Request latency histograms
	EnableProviderLatency bool // Model provider call latency
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:         true,
		EnableProviderLatency: true,
	}
}

var (
	Config   = DefaultMetricsConfig()
	initOnce sync.Once
)

// Initialize applies cfg and installs the registry as the default. Runtime
// collectors are registered once per process.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}
