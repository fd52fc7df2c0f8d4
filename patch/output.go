// SPDX-License-Identifier: EPL-2.0

package patch

import (
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ik5/audpatch/ringbuf"
)

// Output is the consumer end of a patch cable.
//
// It owns the ring buffer producers write into, the gain applied when the
// buffered audio is mixed, and a count of the Inputs that still reference
// it. Holding a *Output is a strong reference; Inputs only hold weak ones.
type Output struct {
	id   uuid.UUID
	name string

	buf     *ringbuf.Buffer[float32]
	scratch []float32

	gain   atomic.Uint32 // math.Float32bits
	alive  atomic.Int32
	closed atomic.Bool
}

// NewOutput returns an Output buffering up to capacity samples.
// It is stale until an Input is bound to it with NewInput.
func NewOutput(capacity int, gain float32) *Output {
	return newOutput("", capacity, gain)
}

func newOutput(name string, capacity int, gain float32) *Output {
	capacity = max(capacity, 0)
	o := &Output{
		id:      uuid.New(),
		name:    name,
		buf:     ringbuf.New[float32](capacity),
		scratch: make([]float32, capacity),
	}
	o.gain.Store(math.Float32bits(gain))
	return o
}

// ID uniquely identifies the Output for logging and diagnostics.
func (o *Output) ID() uuid.UUID { return o.id }

// Name is the label given when the Output was created, possibly empty.
func (o *Output) Name() string { return o.name }

// Capacity is the maximum number of samples the Output buffers.
func (o *Output) Capacity() int { return o.buf.Capacity() }

// Len is the number of samples ready to be read.
func (o *Output) Len() int { return o.buf.Len() }

// Remainder is the number of samples producers can still push.
func (o *Output) Remainder() int { return o.buf.Remainder() }

// Gain returns the target gain applied by MixIn.
func (o *Output) Gain() float32 { return math.Float32frombits(o.gain.Load()) }

func (o *Output) setGain(v float32) { o.gain.Store(math.Float32bits(v)) }

// IsStale reports whether no Input references the Output any more.
// Once stale, an Output stays stale: new Inputs can only be made from a live
// one through Clone.
func (o *Output) IsStale() bool { return o.alive.Load() <= 0 }

// Close destroys the Output from its owner's point of view. Inputs bound to
// it report ErrDisconnected from then on. Buffered samples remain readable.
func (o *Output) Close() { o.closed.Store(true) }

// Closed reports whether Close was called.
func (o *Output) Closed() bool { return o.closed.Load() }

// MixIn reads up to len(dst) samples and adds them, scaled by the gain, to
// dst. dst is never cleared; the caller zeroes it once per mix cycle.
//
// With useLatest set, a backlog larger than len(dst) is dropped first so
// only the newest samples are mixed. A stale Output returns ErrStale and
// transfers nothing.
func (o *Output) MixIn(dst []float32, useLatest bool) (int, error) {
	if o.IsStale() {
		return 0, ErrStale
	}

	n := o.take(o.scratch[:min(len(dst), len(o.scratch))], useLatest)
	g := o.Gain()
	for i, v := range o.scratch[:n] {
		dst[i] += v * g
	}
	return n, nil
}

// Pop moves up to len(dst) samples into dst as they were pushed, without
// gain. It follows the same stale and useLatest rules as MixIn.
func (o *Output) Pop(dst []float32, useLatest bool) (int, error) {
	if o.IsStale() {
		return 0, ErrStale
	}
	return o.take(dst, useLatest), nil
}

func (o *Output) take(dst []float32, useLatest bool) int {
	if useLatest && o.buf.Len() > len(dst) {
		o.buf.SetLen(len(dst), false)
	}
	return o.buf.Pop(dst)
}
