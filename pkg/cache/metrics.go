package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cache_hits_total",
			Help: "Total cache hits by store backend",
		},
		[]string{"store"}, // "memory", "redis", "bigcache"
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_cache_misses_total",
			Help: "Total cache misses, counting expired entries",
		},
	)

	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cache_errors_total",
			Help: "Total cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)
