// Package workload drives a slice.Slice through a scripted sequence of
// operations and reports how storage behaved.
package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wilhasse/goslice/config"
	"github.com/wilhasse/goslice/mem"
	"github.com/wilhasse/goslice/memlog"
	"github.com/wilhasse/goslice/memstat"
	"github.com/wilhasse/goslice/slice"
	"github.com/wilhasse/goslice/ut"
)

// ctxCheckInterval is how many repetitions of one step run between
// cancellation checks.
const ctxCheckInterval = 4096

// Options carries the ambient dependencies of a run.
type Options struct {
	Logger *zap.Logger
	// Registry receives allocator metrics when the workload enables them.
	// A fresh registry is created when nil. One registry may serve many runs.
	Registry *prometheus.Registry
}

// OpStats counts outcomes of one operation kind.
type OpStats struct {
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
}

// Report summarises a run.
type Report struct {
	Name            string             `yaml:"name"`
	Allocator       string             `yaml:"allocator"`
	Length          int                `yaml:"length"`
	Capacity        int                `yaml:"capacity"`
	CapacityHistory []int              `yaml:"capacity_history"`
	Ops             map[string]OpStats `yaml:"ops"`
	Alloc           mem.Stats          `yaml:"alloc"`
	Checksum        int64              `yaml:"checksum"`
	Elapsed         time.Duration      `yaml:"elapsed"`

	Registry *prometheus.Registry `yaml:"-"`
}

// CapacityChanges reports how many times capacity moved during the run.
func (r *Report) CapacityChanges() int {
	if len(r.CapacityHistory) == 0 {
		return 0
	}
	return len(r.CapacityHistory) - 1
}

// Run executes w. The container is destroyed before Run returns, including
// when ctx is cancelled part way through, so the allocator statistics in the
// report include the final free.
func Run(ctx context.Context, w *config.Workload, opts Options) (*Report, error) {
	if w == nil {
		return nil, fmt.Errorf("workload: %w: nil workload", config.ErrInvalid)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("workload: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("workload", w.Name))

	base, release, err := baseAllocator(w)
	if err != nil {
		return nil, err
	}
	defer release()

	counter := mem.NewCountingAllocator[int64](base)
	var alloc mem.Allocator[int64] = counter
	report := &Report{
		Name:      w.Name,
		Allocator: w.Allocator,
		Ops:       make(map[string]OpStats),
	}
	if w.Metrics {
		reg := opts.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		alloc = memstat.New(alloc, memstat.NewMetrics(reg))
		report.Registry = reg
	}
	alloc = memlog.New(alloc, logger)

	s := slice.MakeWith(alloc, w.InitialCapacity)
	defer s.Destroy()
	if !s.Ok() {
		return nil, fmt.Errorf("workload: %s: allocator refused initial capacity %d", w.Name, w.InitialCapacity)
	}

	rnd := ut.NewRand(w.Seed)
	report.CapacityHistory = append(report.CapacityHistory, s.Cap())
	start := time.Now()
	for i, op := range w.Operations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workload: %s: step %d: %w", w.Name, i, err)
		}
		st := report.Ops[op.Op]
		for n := 0; n < op.Count; n++ {
			if n > 0 && n%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("workload: %s: step %d: %w", w.Name, i, err)
				}
			}
			if apply(s, op, rnd) {
				st.Succeeded++
			} else {
				st.Failed++
			}
			if c := s.Cap(); c != report.CapacityHistory[len(report.CapacityHistory)-1] {
				report.CapacityHistory = append(report.CapacityHistory, c)
			}
		}
		report.Ops[op.Op] = st
		logger.Debug("step done",
			zap.Int("step", i),
			zap.String("op", op.Op),
			zap.Int("succeeded", st.Succeeded),
			zap.Int("failed", st.Failed),
			zap.Int("len", s.Len()),
			zap.Int("cap", s.Cap()),
		)
	}
	report.Elapsed = time.Since(start)
	report.Length = s.Len()
	report.Capacity = s.Cap()
	for _, v := range s.Data() {
		report.Checksum += v
	}
	s.Destroy()
	report.Alloc = counter.Stats()

	logger.Info("workload finished",
		zap.String("allocator", w.Allocator),
		zap.Int("len", report.Length),
		zap.Int("cap", report.Capacity),
		zap.Int("capacity_changes", report.CapacityChanges()),
		zap.Uint64("reallocs", report.Alloc.Reallocs),
		zap.Uint64("alloc_failures", report.Alloc.Failures),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func apply(s *slice.Slice[int64], op config.Operation, rnd *ut.Rand) bool {
	switch op.Op {
	case config.OpAppend:
		return s.Append(rnd.Int64())
	case config.OpFrontAppend:
		return s.FrontAppend(rnd.Int64())
	case config.OpPop:
		var v int64
		return s.PopInto(&v)
	case config.OpFrontPop:
		var v int64
		return s.FrontPopInto(&v)
	case config.OpResize:
		return s.Resize(op.Size)
	case config.OpSet:
		return s.CheckedSet(op.Index, rnd.Int64())
	case config.OpGet:
		_, ok := s.CheckedAt(op.Index)
		return ok
	}
	return false
}

func baseAllocator(w *config.Workload) (mem.Allocator[int64], func(), error) {
	noop := func() {}
	switch w.Allocator {
	case config.AllocatorGo:
		return mem.Default[int64](), noop, nil
	case config.AllocatorPool:
		return mem.NewPoolAllocator[int64](), noop, nil
	case config.AllocatorArena:
		a := mem.NewArena[int64](w.ArenaBlock)
		return a, a.Release, nil
	case config.AllocatorLimit:
		return mem.NewLimitAllocator[int64](nil, w.LimitElements), noop, nil
	}
	return nil, nil, fmt.Errorf("workload: %w: unknown allocator %q", config.ErrInvalid, w.Allocator)
}
