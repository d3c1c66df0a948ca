// Package memstat exports allocator activity as prometheus metrics.
package memstat

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wilhasse/goslice/mem"
)

const namespace = "goslice"

// Metrics holds the collectors shared by every decorated allocator.
type Metrics struct {
	Operations *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	LiveBytes  prometheus.Gauge
	Requests   prometheus.Histogram
}

// NewMetrics registers the collectors on reg. A nil reg leaves them
// unregistered. Collectors already registered on reg are reused, so every
// call for one registry returns the same series.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alloc_operations_total",
				Help:      "Allocator calls by operation",
			},
			[]string{"op"},
		)),
		Failures: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alloc_failures_total",
				Help:      "Allocator calls that returned a short buffer",
			},
			[]string{"op"},
		)),
		LiveBytes: register[prometheus.Gauge](reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "alloc_live_bytes",
				Help:      "Bytes currently held by decorated allocators",
			},
		)),
		Requests: register[prometheus.Histogram](reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "alloc_request_elements",
				Help:      "Element count requested per alloc or realloc",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Allocator records metrics for every call to the wrapped allocator.
type Allocator[T any] struct {
	inner    mem.Allocator[T]
	metrics  *Metrics
	elemSize float64
}

// New wraps inner, or the default allocator when inner is nil.
func New[T any](inner mem.Allocator[T], m *Metrics) *Allocator[T] {
	if inner == nil {
		inner = mem.Default[T]()
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Allocator[T]{inner: inner, metrics: m, elemSize: float64(mem.ElemSize[T]())}
}

func (a *Allocator[T]) Alloc(n int) []T {
	buf := a.inner.Alloc(n)
	a.observe("alloc", n, 0, buf)
	return buf
}

func (a *Allocator[T]) Realloc(buf []T, n int) []T {
	old := len(buf)
	out := a.inner.Realloc(buf, n)
	a.observe("realloc", n, old, out)
	return out
}

func (a *Allocator[T]) Free(buf []T) {
	a.inner.Free(buf)
	a.metrics.Operations.WithLabelValues("free").Inc()
	a.metrics.LiveBytes.Sub(float64(len(buf)) * a.elemSize)
}

func (a *Allocator[T]) observe(op string, n, old int, buf []T) {
	a.metrics.Operations.WithLabelValues(op).Inc()
	a.metrics.Requests.Observe(float64(n))
	if mem.Short(buf, n) {
		a.metrics.Failures.WithLabelValues(op).Inc()
		return
	}
	a.metrics.LiveBytes.Add(float64(len(buf)-old) * a.elemSize)
}
