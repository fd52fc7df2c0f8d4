// SPDX-License-Identifier: EPL-2.0

package ringbuf

import "sync/atomic"

// Buffer is a bounded circular store of capacity elements.
//
// Storage holds capacity+1 slots so that a full buffer and an empty buffer
// have distinct read/write positions. It is safe for exactly one producer
// and one consumer goroutine: the producer owns the write position, the
// consumer owns the read position, and each side only loads the other's.
type Buffer[T any] struct {
	data []T
	size uint32 // len(data), capacity + 1

	read  atomic.Uint32
	write atomic.Uint32
}

// New returns a Buffer able to hold capacity elements.
// A negative capacity is treated as zero.
func New[T any](capacity int) *Buffer[T] {
	b := &Buffer[T]{}
	b.Reset(capacity)
	return b
}

// Reset re-allocates the storage for capacity elements and empties the buffer.
// It is the only method that allocates and must not race with Push or Pop.
func (b *Buffer[T]) Reset(capacity int) {
	capacity = max(capacity, 0)
	b.data = make([]T, capacity+1)
	b.size = uint32(capacity + 1)
	b.read.Store(0)
	b.write.Store(0)
}

// Capacity is the maximum number of elements the buffer can hold.
func (b *Buffer[T]) Capacity() int {
	if b.size == 0 {
		return 0
	}
	return int(b.size - 1)
}

// Len returns the number of elements available to read.
func (b *Buffer[T]) Len() int {
	return int(b.occupied(b.read.Load(), b.write.Load()))
}

// Remainder returns the number of elements that can be pushed.
func (b *Buffer[T]) Remainder() int {
	return b.Capacity() - b.Len()
}

func (b *Buffer[T]) occupied(r, w uint32) uint32 {
	if b.size == 0 {
		return 0
	}
	return (w + b.size - r) % b.size
}

// Push copies as many elements of src as fit and returns how many were copied.
func (b *Buffer[T]) Push(src []T) int {
	if b.size == 0 {
		return 0
	}
	w := b.write.Load()
	r := b.read.Load()

	free := b.size - 1 - b.occupied(r, w)
	n := min(uint32(len(src)), free)
	if n == 0 {
		return 0
	}

	first := min(n, b.size-w)
	copy(b.data[w:w+first], src[:first])
	copy(b.data[:n-first], src[first:n])

	b.write.Store((w + n) % b.size)
	return int(n)
}

// Peek copies up to len(dst) buffered elements into dst without consuming them.
func (b *Buffer[T]) Peek(dst []T) int {
	return int(b.peek(dst, b.read.Load()))
}

func (b *Buffer[T]) peek(dst []T, r uint32) uint32 {
	if b.size == 0 {
		return 0
	}
	w := b.write.Load()

	n := min(uint32(len(dst)), b.occupied(r, w))
	if n == 0 {
		return 0
	}

	first := min(n, b.size-r)
	copy(dst[:first], b.data[r:r+first])
	copy(dst[first:n], b.data[:n-first])
	return n
}

// Pop moves up to len(dst) buffered elements into dst.
func (b *Buffer[T]) Pop(dst []T) int {
	r := b.read.Load()
	n := b.peek(dst, r)
	if n > 0 {
		b.read.Store((r + n) % b.size)
	}
	return int(n)
}

// Discard drops up to n of the oldest buffered elements and returns how many
// were dropped.
func (b *Buffer[T]) Discard(n int) int {
	if b.size == 0 || n <= 0 {
		return 0
	}
	r := b.read.Load()
	d := min(uint32(n), b.occupied(r, b.write.Load()))
	b.read.Store((r + d) % b.size)
	return int(d)
}

// SetLen declares exactly n elements as buffered, n clamped to [0, Capacity].
//
// With retainOldest false the read position moves to n elements behind the
// write position, keeping the newest n (consumer side). With retainOldest
// true the write position moves to n elements past the read position
// (producer side). Growing either way re-exposes slots written earlier.
func (b *Buffer[T]) SetLen(n int, retainOldest bool) {
	if b.size == 0 {
		return
	}
	un := uint32(min(max(n, 0), b.Capacity()))

	if retainOldest {
		b.write.Store((b.read.Load() + un) % b.size)
		return
	}
	b.read.Store((b.write.Load() + b.size - un) % b.size)
}
