// Package prom implements the observability hooks on top of Prometheus.
//
// A [Metrics] value owns its registry so tests and multiple servers in one
// process never collide on the global default registerer.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/observability"
)

// Namespace prefixes every metric name.
const Namespace = "kinreport"

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics implements observability.PipelineHooks, CacheHooks and HTTPHooks.
type Metrics struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	relatives      prometheus.Histogram
	layoutDuration *prometheus.HistogramVec
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	artifactBytes  *prometheus.HistogramVec
	cacheAccess    *prometheus.CounterVec
	cacheWrites    *prometheus.CounterVec
	upstream       *prometheus.CounterVec
	upstreamTime   *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	requestTime    *prometheus.HistogramVec
}

// New creates and registers all metrics on a fresh registry, together with
// the process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: Namespace}),
		collectors.NewGoCollector(),
	)

	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "lookup", Name: "total",
			Help: "Registry lookups by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "lookup", Name: "duration_seconds",
			Help: "Registry lookup latency, cache included.", Buckets: defaultBuckets,
		}),
		relatives: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "lookup", Name: "relatives",
			Help:    "Relatives returned per lookup.",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 200},
		}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "layout", Name: "duration_seconds",
			Help: "Layout computation latency.", Buckets: defaultBuckets,
		}, []string{"kind"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "render", Name: "total",
			Help: "Rendered artifacts by kind, format and outcome.",
		}, []string{"kind", "format", "outcome"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "render", Name: "duration_seconds",
			Help: "Drawing and encoding latency.", Buckets: defaultBuckets,
		}, []string{"kind", "format"}),
		artifactBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "render", Name: "artifact_bytes",
			Help:    "Encoded artifact size.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"kind", "format"}),
		cacheAccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "cache", Name: "access_total",
			Help: "Cache reads by key type and result.",
		}, []string{"key_type", "result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "cache", Name: "write_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "upstream", Name: "requests_total",
			Help: "Outgoing registry requests by host and status.",
		}, []string{"host", "status"}),
		upstreamTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "upstream", Name: "duration_seconds",
			Help: "Outgoing registry request latency.", Buckets: defaultBuckets,
		}, []string{"host"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "http", Name: "requests_total",
			Help: "Served HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "Served HTTP request latency.", Buckets: defaultBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(
		m.fetches, m.fetchDuration, m.relatives, m.layoutDuration,
		m.renders, m.renderDuration, m.artifactBytes,
		m.cacheAccess, m.cacheWrites, m.upstream, m.upstreamTime,
		m.requests, m.requestTime,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(route, method).Observe(d.Seconds())
}

// outcome labels an error by its code, "ok" for nil.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return string(errors.ErrCodeInternal)
}

func (m *Metrics) OnFetchStart(context.Context, string) {}

func (m *Metrics) OnFetchComplete(_ context.Context, _ string, relatives int, d time.Duration, err error) {
	m.fetches.WithLabelValues(outcome(err)).Inc()
	m.fetchDuration.Observe(d.Seconds())
	if err == nil {
		m.relatives.Observe(float64(relatives))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, kind string, d time.Duration, _ error) {
	m.layoutDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, string, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, kind, format string, size int, d time.Duration, err error) {
	m.renders.WithLabelValues(kind, format, outcome(err)).Inc()
	m.renderDuration.WithLabelValues(kind, format).Observe(d.Seconds())
	if err == nil {
		m.artifactBytes.WithLabelValues(kind, format).Observe(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheAccess.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheAccess.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheWrites.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.upstream.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.upstreamTime.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstream.WithLabelValues(host, "error").Inc()
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}
