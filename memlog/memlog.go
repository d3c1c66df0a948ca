// Package memlog wraps a mem.Allocator with structured logging.
package memlog

import (
	"go.uber.org/zap"

	"github.com/wilhasse/goslice/mem"
)

// Allocator logs every call made to the wrapped allocator.
type Allocator[T any] struct {
	inner    mem.Allocator[T]
	logger   *zap.Logger
	elemSize uintptr
}

// New wraps inner. A nil inner uses the default allocator and a nil logger
// discards output.
func New[T any](inner mem.Allocator[T], logger *zap.Logger) *Allocator[T] {
	if inner == nil {
		inner = mem.Default[T]()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator[T]{
		inner:    inner,
		logger:   logger.Named("alloc"),
		elemSize: mem.ElemSize[T](),
	}
}

func (a *Allocator[T]) Alloc(n int) []T {
	buf := a.inner.Alloc(n)
	a.record("alloc", n, 0, buf)
	return buf
}

func (a *Allocator[T]) Realloc(buf []T, n int) []T {
	old := len(buf)
	out := a.inner.Realloc(buf, n)
	a.record("realloc", n, old, out)
	return out
}

func (a *Allocator[T]) Free(buf []T) {
	a.inner.Free(buf)
	if ce := a.logger.Check(zap.DebugLevel, "free"); ce != nil {
		ce.Write(zap.Int("count", len(buf)), zap.Uintptr("elem_size", a.elemSize))
	}
}

func (a *Allocator[T]) record(op string, n, old int, buf []T) {
	if mem.Short(buf, n) {
		a.logger.Warn("allocation refused",
			zap.String("op", op),
			zap.Int("count", n),
			zap.Int("old_count", old),
			zap.Int("got", len(buf)),
		)
		return
	}
	if ce := a.logger.Check(zap.DebugLevel, op); ce != nil {
		ce.Write(
			zap.Int("count", n),
			zap.Int("old_count", old),
			zap.Uintptr("elem_size", a.elemSize),
		)
	}
}
