package observability

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/application/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Command and event metrics
	Commands        *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
	EventsHandled   *prometheus.CounterVec
	ProjectionCache *prometheus.CounterVec

	// Cache metrics
	CacheRequests   *prometheus.CounterVec
	CacheWriteBacks *prometheus.CounterVec
	CacheEntries    *prometheus.GaugeVec
	Reconciliations *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace on
// its own registry.
func NewCollector(namespace string) *Collector {
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
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by outcome",
		}, []string{"command", "result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker",
		}, []string{"event_type"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_failed_total",
			Help:      "Domain events the broker refused after the write was stored",
		}, []string{"event_type"}),
		EventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Domain events applied by the projector, by outcome",
		}, []string{"event_type", "result"}),
		ProjectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_cache_failures_total",
			Help:      "Cache writes the projector gave up on while applying an event",
		}, []string{"event_type"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by kind and result",
		}, []string{"kind", "result"}),
		CacheWriteBacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writeback_total",
			Help:      "Background cache fills after a miss",
		}, []string{"kind", "result"}),
		CacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries per kind at the last count report",
		}, []string{"kind"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Count reconciliations by outcome",
		}, []string{"kind", "outcome"}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.EventsPublished,
		c.PublishFailures,
		c.EventsHandled,
		c.ProjectionCache,
		c.CacheRequests,
		c.CacheWriteBacks,
		c.CacheEntries,
		c.Reconciliations,
	)
	return c
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) CacheHit(kind string) {
	c.CacheRequests.WithLabelValues(kind, "hit").Inc()
}

func (c *Collector) CacheMiss(kind string) {
	c.CacheRequests.WithLabelValues(kind, "miss").Inc()
}

func (c *Collector) WriteBack(kind string, err error) {
	c.CacheWriteBacks.WithLabelValues(kind, result(err)).Inc()
}

func (c *Collector) CommandHandled(command string, err error) {
	c.Commands.WithLabelValues(command, result(err)).Inc()
}

func (c *Collector) EventPublished(eventType string, err error) {
	if err != nil {
		c.PublishFailures.WithLabelValues(eventType).Inc()
		return
	}
	c.EventsPublished.WithLabelValues(eventType).Inc()
}

func (c *Collector) EventHandled(eventType string, err error) {
	c.EventsHandled.WithLabelValues(eventType, result(err)).Inc()
}

func (c *Collector) ProjectionCacheFailed(eventType string) {
	c.ProjectionCache.WithLabelValues(eventType).Inc()
}

func (c *Collector) CachedEntities(kind string, count int) {
	c.CacheEntries.WithLabelValues(kind).Set(float64(count))
}

func (c *Collector) Reconciled(kind, outcome string) {
	c.Reconciliations.WithLabelValues(kind, outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ ports.CacheObserver = (*Collector)(nil)
	_ ports.Metrics       = (*Collector)(nil)
)
