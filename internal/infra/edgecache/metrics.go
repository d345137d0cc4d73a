package edgecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_edge_cache_hits_total",
			Help: "Total number of edge cache hits",
		},
		[]string{"store"}, // "redis" | "memory"
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_edge_cache_misses_total",
			Help: "Total number of edge cache misses",
		},
		[]string{"store"},
	)

	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_edge_cache_errors_total",
			Help: "Total number of edge cache operation errors",
		},
		[]string{"store", "operation"}, // operation: "get" | "set"
	)
)
