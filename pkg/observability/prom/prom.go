// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/photosheet/pkg/observability"
)

const namespace = "photosheet"

// Metrics records pipeline, cache and HTTP events. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type Metrics struct {
	gatherer prometheus.Gatherer

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	sheets        *prometheus.CounterVec
	sheetBytes    prometheus.Histogram
	copies        prometheus.Histogram

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	inflight        prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.gatherer = reg
	return m
}

// NewWithRegistry registers the metrics on reg, which also serves them.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := newMetrics(reg)
	m.gatherer = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures.",
		}, []string{"stage"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_warnings_total",
			Help:      "Non-fatal quality warnings by kind.",
		}, []string{"kind"}),
		sheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_total",
			Help:      "Sheets produced by output format.",
		}, []string{"format"}),
		sheetBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sheet_bytes",
			Help:      "Encoded sheet size.",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		}),
		copies: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sheet_copies",
			Help:      "Copies placed per sheet.",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24, 32, 48},
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.stageDuration, m.stageErrors, m.warnings, m.sheets, m.sheetBytes, m.copies,
		m.cacheOps, m.cacheBytes,
		m.inflight, m.requests, m.requestDuration,
	)
	return m
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and custom exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnStageStart(context.Context, observability.Stage) {}

func (m *Metrics) OnStageComplete(_ context.Context, stage observability.Stage, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(string(stage)).Inc()
	}
}

func (m *Metrics) OnQualityWarning(_ context.Context, kind string) {
	m.warnings.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnSheet(_ context.Context, format string, copies, size int) {
	m.sheets.WithLabelValues(format).Inc()
	m.sheetBytes.Observe(float64(size))
	m.copies.Observe(float64(copies))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
