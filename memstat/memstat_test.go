package memstat

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/goslice/mem"
	"github.com/wilhasse/goslice/slice"
)

func TestAllocatorCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	a := New[int64](nil, m)

	buf := a.Alloc(4)
	assert.Equal(t, float64(32), testutil.ToFloat64(m.LiveBytes))
	buf = a.Realloc(buf, 10)
	assert.Equal(t, float64(80), testutil.ToFloat64(m.LiveBytes))
	a.Free(buf)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("alloc")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("realloc")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("free")))
	assert.Zero(t, testutil.ToFloat64(m.LiveBytes))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "goslice_alloc_operations_total")
	assert.Contains(t, names, "goslice_alloc_request_elements")
}

func TestAllocatorCountsFailures(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	s := slice.MakeWith[int64](New[int64](mem.NewLimitAllocator[int64](nil, 4), m), 4)
	defer s.Destroy()

	for i := 0; i < 4; i++ {
		s.Append(int64(i))
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failures.WithLabelValues("realloc")))
	assert.Equal(t, float64(4*8), testutil.ToFloat64(m.LiveBytes))
}

func TestSharedMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	a := New[byte](nil, m)
	b := New[uint32](nil, m)
	a.Alloc(10)
	b.Alloc(10)
	assert.Equal(t, float64(50), testutil.ToFloat64(m.LiveBytes))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Operations.WithLabelValues("alloc")))
}

func TestNilMetricsUnregistered(t *testing.T) {
	a := New[int](nil, nil)
	assert.Len(t, a.Alloc(2), 2)
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	var second *Metrics
	require.NotPanics(t, func() { second = NewMetrics(reg) })
	assert.Same(t, first.Operations, second.Operations)
	assert.Same(t, first.Failures, second.Failures)

	New[int64](nil, first).Alloc(2)
	New[int64](nil, second).Alloc(3)
	assert.Equal(t, float64(40), testutil.ToFloat64(first.LiveBytes))
	assert.Equal(t, float64(2), testutil.ToFloat64(second.Operations.WithLabelValues("alloc")))
}
