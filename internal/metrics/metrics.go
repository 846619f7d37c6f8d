// Package metrics exposes Prometheus metrics for the ledger API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tweetledger/internal/model"
	"tweetledger/internal/queue"
)

const namespace = "tweetledger"

// Collector holds all Prometheus metrics for one process. Each collector
// owns its registry, so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	EventsPublished *prometheus.CounterVec
}

// NewCollector registers the ledger metrics on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	eventsPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_events_published_total",
			Help:      "Ledger events handed to the event stream",
		},
		[]string{"type", "status"},
	)

	registry.MustRegister(httpRequests, httpDuration, eventsPublished)

	return &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		EventsPublished: eventsPublished,
	}
}

// WatchSchema exports the deployed schema version as a gauge read from
// current at scrape time. Call it once.
func (c *Collector) WatchSchema(current func() model.SchemaVersion) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_version",
			Help:      "Deployed schema version, 0 before initialization",
		},
		func() float64 { return float64(current()) },
	))
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern, so
// /tweets/1 and /tweets/2 share one series.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type instrumentedPublisher struct {
	next    queue.Publisher
	metrics *Collector
}

// InstrumentPublisher counts every event p publishes, by type and outcome.
func InstrumentPublisher(p queue.Publisher, c *Collector) queue.Publisher {
	return &instrumentedPublisher{next: p, metrics: c}
}

func (p *instrumentedPublisher) Publish(ctx context.Context, stream string, event queue.LedgerEvent) (string, error) {
	id, err := p.next.Publish(ctx, stream, event)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.EventsPublished.WithLabelValues(event.Type, status).Inc()
	return id, err
}
