package workload

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wilhasse/goslice/config"
)

func TestRunDefaultWorkload(t *testing.T) {
	for _, kind := range []string{config.AllocatorGo, config.AllocatorPool, config.AllocatorArena} {
		t.Run(kind, func(t *testing.T) {
			w := config.Default()
			w.Allocator = kind
			r, err := Run(context.Background(), w, Options{})
			require.NoError(t, err)

			// 1000 appends + 10 front appends - 100 pops - 10 front pops,
			// then resized down to 64.
			assert.Equal(t, 64, r.Length)
			assert.Equal(t, 1024, r.Capacity)
			assert.Equal(t, OpStats{Succeeded: 1000}, r.Ops[config.OpAppend])
			assert.Equal(t, OpStats{Succeeded: 100}, r.Ops[config.OpPop])
			assert.Equal(t, []int{16, 32, 64, 128, 256, 512, 1024}, r.CapacityHistory)
			assert.Equal(t, 6, r.CapacityChanges())
			assert.Equal(t, uint64(6), r.Alloc.Reallocs)
			assert.Equal(t, uint64(1), r.Alloc.Frees, "slice is destroyed before returning")
			assert.Zero(t, r.Alloc.LiveElements)
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	w := config.Default()
	a, err := Run(context.Background(), w, Options{})
	require.NoError(t, err)
	b, err := Run(context.Background(), w, Options{})
	require.NoError(t, err)
	assert.Equal(t, a.Checksum, b.Checksum)

	w.Seed = 99
	c, err := Run(context.Background(), w, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Checksum, c.Checksum)
}

func TestRunLimitAllocatorCountsFailures(t *testing.T) {
	w := &config.Workload{
		Name:            "bounded",
		Allocator:       config.AllocatorLimit,
		InitialCapacity: 4,
		LimitElements:   8,
		LogLevel:        "info",
		Operations: []config.Operation{
			{Op: config.OpAppend, Count: 20},
			{Op: config.OpGet, Count: 1, Index: 6},
			{Op: config.OpGet, Count: 1, Index: 7},
			{Op: config.OpSet, Count: 1, Index: 0},
		},
	}
	r, err := Run(context.Background(), w, Options{})
	require.NoError(t, err)

	// Capacity 4 doubles to 8 at length 4; the next doubling needs 16.
	assert.Equal(t, 7, r.Length)
	assert.Equal(t, 8, r.Capacity)
	assert.Equal(t, OpStats{Succeeded: 7, Failed: 13}, r.Ops[config.OpAppend])
	assert.Equal(t, OpStats{Succeeded: 1, Failed: 1}, r.Ops[config.OpGet])
	assert.Equal(t, OpStats{Succeeded: 1}, r.Ops[config.OpSet])
	assert.Equal(t, uint64(13), r.Alloc.Failures)
}

func TestRunExportsMetrics(t *testing.T) {
	w := config.Default()
	w.Metrics = true
	reg := prometheus.NewRegistry()
	r, err := Run(context.Background(), w, Options{Registry: reg})
	require.NoError(t, err)
	assert.Same(t, reg, r.Registry)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRunSharesRegistryAcrossRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := config.Default()
	w.Metrics = true
	for i := 0; i < 2; i++ {
		require.NotPanics(t, func() {
			_, err := Run(context.Background(), w, Options{Registry: reg})
			require.NoError(t, err)
		})
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	var allocs float64
	for _, f := range families {
		if f.GetName() != "goslice_alloc_operations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "op" && l.GetValue() == "alloc" {
					allocs += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(2), allocs)
}

func TestRunLogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	_, err := Run(context.Background(), config.Default(), Options{Logger: zap.New(core)})
	require.NoError(t, err)

	entries := logs.FilterMessage("workload finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "default", fields["workload"])
	assert.Equal(t, int64(64), fields["len"])
}

func TestRunRejectsInvalidWorkload(t *testing.T) {
	_, err := Run(context.Background(), &config.Workload{Allocator: "nope"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalid))

	_, err = Run(context.Background(), nil, Options{})
	assert.True(t, errors.Is(err, config.ErrInvalid))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, config.Default(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunFailsWhenInitialAllocationRefused(t *testing.T) {
	w := config.Default()
	w.Allocator = config.AllocatorLimit
	w.LimitElements = 4
	_, err := Run(context.Background(), w, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial capacity")
}

func TestGrowthTable(t *testing.T) {
	steps, reallocs := GrowthTable(2, 20)
	assert.Equal(t, []GrowthStep{
		{Length: 0, Capacity: 2},
		{Length: 2, Capacity: 4},
		{Length: 4, Capacity: 8},
		{Length: 8, Capacity: 16},
		{Length: 16, Capacity: 32},
	}, steps)
	assert.Equal(t, uint64(4), reallocs)

	steps, reallocs = GrowthTable(0, 5)
	assert.Equal(t, []GrowthStep{{Length: 0, Capacity: 10}}, steps)
	assert.Zero(t, reallocs)
}
