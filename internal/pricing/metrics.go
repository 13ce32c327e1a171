package pricing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks campaign snapshot reads served from cache.
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_campaign_cache_hits_total",
		Help: "Total number of campaign cache hits",
	})

	// cacheMisses tracks reads that required a repository refresh.
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_campaign_cache_misses_total",
		Help: "Total number of campaign cache misses",
	})

	// cacheLoadDuration tracks the time taken to refresh the campaign snapshot.
	cacheLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_campaign_cache_load_duration_seconds",
		Help:    "Time taken to load the campaign snapshot from the repository",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// cacheLoadErrors tracks snapshot refresh failures.
	cacheLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_campaign_cache_load_errors_total",
		Help: "Total number of campaign snapshot load errors",
	})

	// cacheInvalidations tracks explicit invalidations from admin mutations.
	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_campaign_cache_invalidations_total",
		Help: "Total number of explicit campaign cache invalidations",
	})

	// resolveDuration tracks discount resolution latency.
	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_resolve_duration_seconds",
		Help:    "Time taken to resolve a product's sell price",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// resolveFallbacks tracks resolutions that served the list price because
	// the campaign source was unavailable.
	resolveFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_resolve_fallbacks_total",
		Help: "Total number of resolutions degraded to the list price",
	})
)

func recordCacheHit()          { cacheHits.Inc() }
func recordCacheMiss()         { cacheMisses.Inc() }
func recordCacheLoadError()    { cacheLoadErrors.Inc() }
func recordCacheInvalidation() { cacheInvalidations.Inc() }

func recordCacheLoad(d time.Duration) {
	cacheLoadDuration.Observe(d.Seconds())
}

func recordResolveDuration(d time.Duration) {
	resolveDuration.Observe(d.Seconds())
}

func recordResolveFallback() {
	resolveFallbacks.Inc()
}
