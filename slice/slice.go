// Package slice implements a growable contiguous array with explicit
// capacity control and an explicit lifecycle.
//
// A Slice is created with Make (or MakeRaw) and must be released with
// Destroy, which hands the storage back to the allocator it came from. A
// Slice has exactly one owner: copying the struct value yields two owners of
// one buffer, and nothing guards against that.
//
// Accessors come in two tiers. At and Set trust the caller to keep the index
// inside [0, Len()) and perform no validation. CheckedAt, CheckedSet and the
// pop family validate their inputs and report failure with a false status.
// No operation panics on its own account.
//
// A Slice is not safe for concurrent use. Any mutating call may reallocate,
// which invalidates views previously returned by Data or Raw.
package slice

import "github.com/wilhasse/goslice/mem"

// DefaultCapacity is the capacity used when a constructor is asked for zero
// slots, and the headroom added when a requested length exceeds capacity.
const DefaultCapacity = 10

// Slice is a growable array of T backed by storage from a mem.Allocator.
type Slice[T any] struct {
	data     []T
	length   int
	capacity int
	alloc    mem.Allocator[T]
}

// Make creates a slice with length 0 and room for at least capacity elements.
func Make[T any](capacity int) *Slice[T] {
	return MakeRawWith[T](nil, capacity, 0)
}

// MakeWith is Make with an injected allocator.
func MakeWith[T any](alloc mem.Allocator[T], capacity int) *Slice[T] {
	return MakeRawWith(alloc, capacity, 0)
}

// MakeRaw creates a slice whose length is preset to length. Prefer Make.
func MakeRaw[T any](capacity, length int) *Slice[T] {
	return MakeRawWith[T](nil, capacity, length)
}

// MakeRawWith is MakeRaw with an injected allocator. A zero capacity becomes
// DefaultCapacity, and a length above capacity raises capacity to
// length+DefaultCapacity. All slots start zeroed. If the allocator cannot
// supply the buffer the returned slice is not Ok.
func MakeRawWith[T any](alloc mem.Allocator[T], capacity, length int) *Slice[T] {
	if alloc == nil {
		alloc = mem.Default[T]()
	}
	capacity = max(capacity, 0)
	length = max(length, 0)
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if length > capacity {
		capacity = length + DefaultCapacity
	}
	s := &Slice[T]{alloc: alloc}
	buf := alloc.Alloc(capacity)
	if mem.Short(buf, capacity) {
		if buf != nil {
			alloc.Free(buf)
		}
		return s
	}
	s.data = buf[:capacity]
	s.length = length
	s.capacity = capacity
	return s
}

// Destroy frees the storage and resets the slice to its zero state. It is
// safe to call on nil, destroyed and degraded slices.
func (s *Slice[T]) Destroy() {
	if s == nil {
		return
	}
	if s.data != nil {
		s.allocator().Free(s.data)
	}
	s.data = nil
	s.length = 0
	s.capacity = 0
}

// Append adds v at the end. It fails on a nil, destroyed or never
// constructed slice, or when the allocator cannot grow the storage.
func (s *Slice[T]) Append(v T) bool {
	if !s.growOne() {
		return false
	}
	s.data[s.length-1] = v
	return true
}

// FrontAppend inserts v at index 0, moving every element up one slot.
// It costs O(Len()).
func (s *Slice[T]) FrontAppend(v T) bool {
	if !s.growOne() {
		return false
	}
	if s.length > 1 {
		copy(s.data[1:s.length], s.data[:s.length-1])
	}
	s.data[0] = v
	return true
}

// growOne increments length and reallocates when the new length reaches or
// passes capacity. Capacity doubles on reaching it; a length already past
// capacity gets length*1.5+1.
func (s *Slice[T]) growOne() bool {
	if s == nil || s.data == nil || s.capacity == 0 {
		return false
	}
	n := s.length + 1
	newCap := s.capacity
	switch {
	case n == s.capacity:
		newCap = s.capacity * 2
	case n > s.capacity:
		newCap = n + n/2 + 1
	}
	if newCap != s.capacity && !s.realloc(newCap) {
		return false
	}
	s.length = n
	return true
}

func (s *Slice[T]) realloc(n int) bool {
	buf := s.allocator().Realloc(s.data, n)
	if mem.Short(buf, n) {
		return false
	}
	s.data = buf[:n]
	s.capacity = n
	return true
}

// At returns the element at i. The caller guarantees 0 <= i < Len().
func (s *Slice[T]) At(i int) T {
	return s.data[i]
}

// Set stores v at i. The caller guarantees 0 <= i < Len().
func (s *Slice[T]) Set(i int, v T) {
	s.data[i] = v
}

// CheckedAt returns the element at i, or false when i is out of range or the
// slice is not usable.
func (s *Slice[T]) CheckedAt(i int) (T, bool) {
	var v T
	ok := s.CheckedAtInto(i, &v)
	return v, ok
}

// CheckedAtInto copies the element at i into dst. It fails when dst is nil,
// the slice is nil or destroyed, the length exceeds capacity, or i is
// outside [0, Len()).
func (s *Slice[T]) CheckedAtInto(i int, dst *T) bool {
	if s == nil || s.data == nil || dst == nil || s.length > s.capacity {
		return false
	}
	if i < 0 || i >= s.length {
		return false
	}
	*dst = s.data[i]
	return true
}

// CheckedSet stores v at i. The bound is min(Len(), Cap()).
func (s *Slice[T]) CheckedSet(i int, v T) bool {
	if s == nil || s.data == nil {
		return false
	}
	if i < 0 || i >= min(s.length, s.capacity) {
		return false
	}
	s.data[i] = v
	return true
}

// Pop removes and returns the last element.
func (s *Slice[T]) Pop() (T, bool) {
	var v T
	ok := s.PopInto(&v)
	return v, ok
}

// PopInto removes the last element and copies it into dst. With a nil dst
// the element is discarded and the call succeeds even on an empty slice.
func (s *Slice[T]) PopInto(dst *T) bool {
	if s == nil || s.data == nil {
		return false
	}
	s.clampLength()
	if dst == nil {
		if s.length > 0 {
			s.length--
		}
		return true
	}
	if s.length == 0 {
		return false
	}
	s.length--
	*dst = s.data[s.length]
	return true
}

// FrontPop removes and returns the first element. It costs O(Len()).
func (s *Slice[T]) FrontPop() (T, bool) {
	var v T
	ok := s.FrontPopInto(&v)
	return v, ok
}

// FrontPopInto removes the first element and copies it into dst, moving the
// remaining elements down one slot. A nil dst discards the element.
func (s *Slice[T]) FrontPopInto(dst *T) bool {
	if s == nil || s.data == nil {
		return false
	}
	s.clampLength()
	if s.length == 0 {
		return dst == nil
	}
	if dst != nil {
		*dst = s.data[0]
	}
	copy(s.data[:s.length-1], s.data[1:s.length])
	s.length--
	return true
}

func (s *Slice[T]) clampLength() {
	if s.length > s.capacity {
		s.length = s.capacity
	}
}

// Ok reports whether the slice has storage and a length within capacity.
func (s *Slice[T]) Ok() bool {
	return s != nil && s.data != nil && s.length <= s.capacity
}

// Len returns the recorded length without validation.
func (s *Slice[T]) Len() int {
	if s == nil {
		return 0
	}
	return s.length
}

// Cap returns the recorded capacity without validation.
func (s *Slice[T]) Cap() int {
	if s == nil {
		return 0
	}
	return s.capacity
}

// Resize sets the length to n. Shrinking keeps capacity and the storage.
// Growing within capacity reuses the storage; growing past it reallocates to
// exactly n slots. Slots that become valid by growing are zeroed.
func (s *Slice[T]) Resize(n int) bool {
	if s == nil || s.data == nil || n < 0 {
		return false
	}
	if n <= s.length {
		s.length = n
		return true
	}
	if n > s.capacity && !s.realloc(n) {
		return false
	}
	clear(s.data[min(s.length, n):n])
	s.length = n
	return true
}

// Data returns the valid elements as a view into the storage. The view is
// invalidated by the next mutating call.
func (s *Slice[T]) Data() []T {
	if s == nil || s.data == nil {
		return nil
	}
	return s.data[:min(s.length, s.capacity):s.capacity]
}

// Values returns a copy of the valid elements.
func (s *Slice[T]) Values() []T {
	data := s.Data()
	if data == nil {
		return nil
	}
	out := make([]T, len(data))
	copy(out, data)
	return out
}

// Raw returns the whole backing buffer, including slots past Len().
func (s *Slice[T]) Raw() []T {
	if s == nil {
		return nil
	}
	return s.data
}

// UnsafeSetLen overwrites the length field without checking it against
// capacity. A length above capacity leaves the slice degraded: Ok reports
// false and CheckedAt refuses to read until a pop or Resize brings the length
// back within capacity. Negative lengths are stored as 0.
func (s *Slice[T]) UnsafeSetLen(n int) {
	if s == nil {
		return
	}
	s.length = max(n, 0)
}

// Allocator returns the allocator backing the slice.
func (s *Slice[T]) Allocator() mem.Allocator[T] {
	if s == nil {
		return nil
	}
	return s.allocator()
}

func (s *Slice[T]) allocator() mem.Allocator[T] {
	if s.alloc == nil {
		s.alloc = mem.Default[T]()
	}
	return s.alloc
}
