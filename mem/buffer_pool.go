package mem

import (
	"math/bits"
	"sync"
)

// BufferPool provides fixed-size buffers backed by sync.Pool.
type BufferPool[T any] struct {
	size int
	pool sync.Pool
}

// NewBufferPool creates a pool for buffers of a single size.
func NewBufferPool[T any](size int) *BufferPool[T] {
	p := &BufferPool[T]{size: size}
	p.pool.New = func() any {
		buf := make([]T, size)
		return &buf
	}
	return p
}

// Get returns a zeroed buffer with length equal to the pool size.
func (p *BufferPool[T]) Get() []T {
	buf := *(p.pool.Get().(*[]T))
	buf = buf[:p.size]
	clear(buf)
	return buf
}

// Put returns a buffer to the pool if it matches the pool size.
func (p *BufferPool[T]) Put(buf []T) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

// Size reports the pool's fixed buffer size.
func (p *BufferPool[T]) Size() int {
	return p.size
}

const (
	minPoolClass = 3  // 8 elements
	maxPoolClass = 24 // 16M elements
)

// PoolAllocator recycles buffers in power-of-two size classes. Requests
// larger than the biggest class go straight to the runtime. It is safe for
// concurrent use.
type PoolAllocator[T any] struct {
	classes [maxPoolClass + 1]*BufferPool[T]
}

// NewPoolAllocator creates a pooled allocator.
func NewPoolAllocator[T any]() *PoolAllocator[T] {
	p := &PoolAllocator[T]{}
	for c := minPoolClass; c <= maxPoolClass; c++ {
		p.classes[c] = NewBufferPool[T](1 << c)
	}
	return p
}

func sizeClass(n int) int {
	if n <= 1<<minPoolClass {
		return minPoolClass
	}
	return bits.Len(uint(n - 1))
}

func (p *PoolAllocator[T]) Alloc(n int) []T {
	if p == nil || n <= 0 {
		return nil
	}
	c := sizeClass(n)
	if c > maxPoolClass {
		return make([]T, n)
	}
	return p.classes[c].Get()[:n]
}

func (p *PoolAllocator[T]) Realloc(buf []T, n int) []T {
	if p == nil {
		return nil
	}
	if n <= 0 {
		p.Free(buf)
		return nil
	}
	if n <= cap(buf) {
		out := buf[:n]
		if n > len(buf) {
			clear(out[len(buf):])
		}
		return out
	}
	out := p.Alloc(n)
	copy(out, buf)
	p.Free(buf)
	return out
}

func (p *PoolAllocator[T]) Free(buf []T) {
	if p == nil || cap(buf) == 0 {
		return
	}
	c := sizeClass(cap(buf))
	if c > maxPoolClass || cap(buf) != 1<<c {
		return
	}
	p.classes[c].Put(buf[:cap(buf)])
}
