// Package metrics contains prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheRecorder records listing cache events.
type CacheRecorder interface {
	CacheHit()
	CacheMiss()
	CacheClear()
}

// FollowRecorder records follow edge changes.
type FollowRecorder interface {
	Followed()
	Unfollowed()
	FollowRejected(reason string)
}

// Collector ...
type Collector struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheClears    prometheus.Counter
	follows        prometheus.Counter
	unfollows      prometheus.Counter
	followRejected *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    prometheus.Histogram
}

// NewCollector creates Collector and registers its metrics in reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_listing_cache_hits_total",
			Help: "Listing requests served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_listing_cache_misses_total",
			Help: "Listing requests rendered from storage.",
		}),
		cacheClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_listing_cache_clears_total",
			Help: "Explicit listing cache clears.",
		}),
		follows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_follows_total",
			Help: "Created follow edges.",
		}),
		unfollows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_unfollows_total",
			Help: "Unfollow requests.",
		}),
		followRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_follows_rejected_total",
			Help: "Rejected follow attempts by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheClears,
		c.follows,
		c.unfollows,
		c.followRejected,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// CacheHit ...
func (c *Collector) CacheHit() { c.cacheHits.Inc() }

// CacheMiss ...
func (c *Collector) CacheMiss() { c.cacheMisses.Inc() }

// CacheClear ...
func (c *Collector) CacheClear() { c.cacheClears.Inc() }

// Followed ...
func (c *Collector) Followed() { c.follows.Inc() }

// Unfollowed ...
func (c *Collector) Unfollowed() { c.unfollows.Inc() }

// FollowRejected ...
func (c *Collector) FollowRejected(reason string) { c.followRejected.WithLabelValues(reason).Inc() }

// RecordHTTP records a served request.
func (c *Collector) RecordHTTP(status int, d time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(d.Seconds())
}

// Handler returns http handler exposing metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
