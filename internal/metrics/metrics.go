// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookhub"

// Collector owns a private registry so tests can build as many as they like.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	BookmarksCreated prometheus.Counter
	BookmarksDeleted prometheus.Counter
	EdgesCreated     prometheus.Counter
	ImportsTotal     *prometheus.CounterVec
	LinkChecks       *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"cache"}),
		BookmarksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_created_total",
			Help:      "Total number of bookmarks created",
		}),
		BookmarksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_deleted_total",
			Help:      "Total number of bookmarks deleted",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_created_total",
			Help:      "Total number of bookmark relationships created",
		}),
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total number of committed imports by format",
		}, []string{"format"}),
		LinkChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_checks_total",
			Help:      "Total number of link checks by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.CacheHits,
		c.CacheMisses,
		c.BookmarksCreated,
		c.BookmarksDeleted,
		c.EdgesCreated,
		c.ImportsTotal,
		c.LinkChecks,
	)
	return c
}

// Handler serves the private registry in the text exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one finished request. route is the chi pattern, not the raw path.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) CacheHit(cache string) {
	if c == nil {
		return
	}
	c.CacheHits.WithLabelValues(cache).Inc()
}

func (c *Collector) CacheMiss(cache string) {
	if c == nil {
		return
	}
	c.CacheMisses.WithLabelValues(cache).Inc()
}

func (c *Collector) BookmarkCreated(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.BookmarksCreated.Add(float64(n))
}

func (c *Collector) BookmarkDeleted(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.BookmarksDeleted.Add(float64(n))
}

func (c *Collector) RelationshipCreated() {
	if c == nil {
		return
	}
	c.EdgesCreated.Inc()
}

func (c *Collector) Imported(format string) {
	if c == nil {
		return
	}
	c.ImportsTotal.WithLabelValues(format).Inc()
}

// LinkChecked counts one check as "valid" or "broken".
func (c *Collector) LinkChecked(valid bool) {
	if c == nil {
		return
	}
	outcome := "broken"
	if valid {
		outcome = "valid"
	}
	c.LinkChecks.WithLabelValues(outcome).Inc()
}
