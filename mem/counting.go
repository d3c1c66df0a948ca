package mem

// Stats is a snapshot of allocator activity.
type Stats struct {
	Allocs       uint64
	Reallocs     uint64
	Frees        uint64
	Failures     uint64
	LiveElements int
	LiveBytes    uint64
	PeakBytes    uint64
}

// CountingAllocator tracks operations and live elements of an inner
// allocator. It is not safe for concurrent use.
type CountingAllocator[T any] struct {
	inner    Allocator[T]
	elemSize uint64
	stats    Stats
}

// NewCountingAllocator wraps inner, or the default allocator when inner is nil.
func NewCountingAllocator[T any](inner Allocator[T]) *CountingAllocator[T] {
	if inner == nil {
		inner = Default[T]()
	}
	return &CountingAllocator[T]{inner: inner, elemSize: uint64(ElemSize[T]())}
}

func (c *CountingAllocator[T]) Alloc(n int) []T {
	buf := c.inner.Alloc(n)
	c.stats.Allocs++
	if Short(buf, n) {
		c.stats.Failures++
		return buf
	}
	c.grow(len(buf))
	return buf
}

func (c *CountingAllocator[T]) Realloc(buf []T, n int) []T {
	old := len(buf)
	out := c.inner.Realloc(buf, n)
	c.stats.Reallocs++
	if Short(out, n) {
		c.stats.Failures++
		return out
	}
	c.shrink(old)
	c.grow(len(out))
	return out
}

func (c *CountingAllocator[T]) Free(buf []T) {
	if buf == nil {
		return
	}
	c.inner.Free(buf)
	c.stats.Frees++
	c.shrink(len(buf))
}

// Stats returns the current counters.
func (c *CountingAllocator[T]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return c.stats
}

func (c *CountingAllocator[T]) grow(n int) {
	c.stats.LiveElements += n
	c.stats.LiveBytes += uint64(n) * c.elemSize
	if c.stats.LiveBytes > c.stats.PeakBytes {
		c.stats.PeakBytes = c.stats.LiveBytes
	}
}

func (c *CountingAllocator[T]) shrink(n int) {
	if n > c.stats.LiveElements {
		n = c.stats.LiveElements
	}
	c.stats.LiveElements -= n
	c.stats.LiveBytes -= uint64(n) * c.elemSize
}

// LimitAllocator refuses requests that would raise the live element count
// above a fixed budget. Refused requests return nil and leave the input
// buffer untouched.
type LimitAllocator[T any] struct {
	inner Allocator[T]
	limit int
	live  int
}

// NewLimitAllocator wraps inner with a budget of limit live elements.
func NewLimitAllocator[T any](inner Allocator[T], limit int) *LimitAllocator[T] {
	if inner == nil {
		inner = Default[T]()
	}
	return &LimitAllocator[T]{inner: inner, limit: limit}
}

func (l *LimitAllocator[T]) Alloc(n int) []T {
	if n <= 0 || l.live+n > l.limit {
		return nil
	}
	buf := l.inner.Alloc(n)
	l.live += len(buf)
	return buf
}

func (l *LimitAllocator[T]) Realloc(buf []T, n int) []T {
	if n <= 0 {
		l.Free(buf)
		return nil
	}
	if l.live-len(buf)+n > l.limit {
		return nil
	}
	old := len(buf)
	out := l.inner.Realloc(buf, n)
	if Short(out, n) {
		return out
	}
	l.live += len(out) - old
	return out
}

func (l *LimitAllocator[T]) Free(buf []T) {
	if buf == nil {
		return
	}
	l.inner.Free(buf)
	l.live -= len(buf)
	if l.live < 0 {
		l.live = 0
	}
}

// Live reports the number of elements currently charged to the budget.
func (l *LimitAllocator[T]) Live() int {
	return l.live
}

// Limit reports the budget.
func (l *LimitAllocator[T]) Limit() int {
	return l.limit
}
