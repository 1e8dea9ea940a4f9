package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coliver_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AuthEvents counts registrations, logins and logouts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coliver_auth_events_total",
		Help: "Total authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// ListingMutations counts listing writes by operation.
	ListingMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coliver_listing_mutations_total",
		Help: "Total listing create, update and delete operations",
	}, []string{"operation"})

	// FavoriteToggles counts save and unsave operations.
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coliver_favorite_toggles_total",
		Help: "Total saved listing changes by direction",
	}, []string{"action"})

	// UpstreamFailures counts failed calls to external collaborators.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coliver_upstream_failures_total",
		Help: "Total failed calls to the geocoder and image host",
	}, []string{"service"})

	// UpstreamLatency records the latency of external collaborator calls.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coliver_upstream_latency_seconds",
		Help:    "Latency of calls to the geocoder and image host",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)
