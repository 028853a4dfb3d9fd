// Package metrics exposes Prometheus counters for provider traffic and cache
// behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ProviderAttempts  *prometheus.CounterVec
	ProviderFailures  *prometheus.CounterVec
	RateLimitWaits    *prometheus.CounterVec
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	MockFallbacks     *prometheus.CounterVec
	CorrelationsTotal prometheus.Counter
}

// New registers all collectors against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_provider_attempts_total",
			Help: "Provider request attempts, including retries.",
		}, []string{"provider", "outcome"}),
		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_provider_failures_total",
			Help: "Provider requests that exhausted their retry budget.",
		}, []string{"provider"}),
		RateLimitWaits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_rate_limit_waits_total",
			Help: "Courtesy waits taken because a provider window was full.",
		}, []string{"provider"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_cache_hits_total",
			Help: "Cache hits by series type.",
		}, []string{"series"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_cache_misses_total",
			Help: "Cache misses by series type.",
		}, []string{"series"}),
		MockFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codesmog_mock_fallbacks_total",
			Help: "Responses served from synthetic data by provider.",
		}, []string{"provider"}),
		CorrelationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "codesmog_correlations_computed_total",
			Help: "Correlation results computed (cache misses only).",
		}),
	}
}

// NewDefault registers against the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
