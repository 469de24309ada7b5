package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_cache_lookups_total",
		Help: "Video queries by the tier that served them (memory, persistent, miss).",
	}, []string{"source"})

	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_memory_cache_evictions_total",
		Help: "Memory cache entries dropped, by reason (expired, lfu).",
	}, []string{"reason"})

	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_persistent_store_failures_total",
		Help: "Persistent cache operations that failed and were degraded.",
	}, []string{"op"})

	SearchTiers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_search_tiers_total",
		Help: "Search tiers executed against the provider, by outcome.",
	}, []string{"outcome"})

	ProviderQuotaErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worldvlog_provider_quota_errors_total",
		Help: "Searches aborted because the provider refused the call.",
	})

	RatingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_rating_submissions_total",
		Help: "Recorded ratings by verdict (good, bad).",
	}, []string{"verdict"})

	PoolRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldvlog_pool_rebuilds_total",
		Help: "Random pool rebuilds by result (ok, error).",
	}, []string{"result"})
)
