// Package observability provides metrics and tracing for the wall service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsPublished counts posts accepted through the publish pipeline.
	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anonwall_posts_published_total",
		Help: "Total number of posts published",
	})

	// LikeToggles counts like-state mutations by direction.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonwall_like_toggles_total",
		Help: "Total number of like-state mutations by action",
	}, []string{"action"})

	// RateLimited counts requests rejected by a rate limiter, by action.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonwall_rate_limited_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"action"})

	// StoreWriteLatency records document commit latency by document key.
	StoreWriteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anonwall_store_write_seconds",
		Help:    "Latency of atomic document writes in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"document"})

	// IdentitiesMinted counts newly issued anonymous identity tokens.
	IdentitiesMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anonwall_identities_minted_total",
		Help: "Total number of anonymous identity cookies issued",
	})
)
