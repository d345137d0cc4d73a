package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_db_connect_attempts_total",
		Help: "Total number of database connect attempts",
	})

	connectBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_db_connect_backoff_seconds",
		Help:    "Backoff duration between connect attempts",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	})

	connectExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_db_connect_exhausted_total",
		Help: "Total number of times connect retries were exhausted",
	})

	probeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_db_probe_failures_total",
		Help: "Total number of liveness probe failures on a cached connection",
	})
)
