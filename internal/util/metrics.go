package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_batches_total",
		Help: "Total number of bulk import batches started",
	})

	ImportRowsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_rows_succeeded_total",
		Help: "Total number of import rows written successfully",
	})

	ImportRowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_rows_failed_total",
		Help: "Total number of import rows rejected or failed to write",
	})

	AvailabilityChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_checks_total",
		Help: "Total number of availability checks by outcome",
	}, []string{"outcome"})

	ReservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_total",
		Help: "Total number of cart reservations recorded",
	})

	ResolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_resolve_latency_seconds",
		Help:    "Latency of availability resolution including store and cache reads",
		Buckets: prometheus.DefBuckets,
	})

	ProductCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_requests_total",
		Help: "Product snapshot cache requests by result",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
