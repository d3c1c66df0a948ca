package mem

import "unsafe"

// Allocator is the storage contract used by growable containers.
//
// Alloc returns n zeroed elements. Realloc returns a buffer of n elements
// whose first min(len(buf), n) elements equal buf's; the remainder is zeroed.
// Free releases a buffer previously returned by Alloc or Realloc. An
// allocator reports failure by returning a buffer shorter than requested
// (usually nil) and never panics.
type Allocator[T any] interface {
	Alloc(n int) []T
	Realloc(buf []T, n int) []T
	Free(buf []T)
}

// GoAllocator delegates to the Go runtime and keeps Free as a no-op.
type GoAllocator[T any] struct{}

func (GoAllocator[T]) Alloc(n int) []T {
	if n <= 0 {
		return nil
	}
	return make([]T, n)
}

func (GoAllocator[T]) Realloc(buf []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n <= cap(buf) {
		out := buf[:n]
		if n > len(buf) {
			clear(out[len(buf):])
		}
		return out
	}
	out := make([]T, n)
	copy(out, buf)
	return out
}

func (GoAllocator[T]) Free([]T) {}

// Default returns the allocator used when none is injected.
func Default[T any]() Allocator[T] {
	return GoAllocator[T]{}
}

// ElemSize reports the size in bytes of one T.
func ElemSize[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// Short reports whether buf failed to satisfy a request for n elements.
func Short[T any](buf []T, n int) bool {
	return n > 0 && len(buf) < n
}
