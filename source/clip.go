// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/patch"
	"github.com/ik5/audpatch/ringbuf"
)

// clipChunk bounds a single push from a Clip.
const clipChunk = 4096

// Clip plays in-memory samples into an Input a fixed number of times.
type Clip struct {
	runner

	in    *patch.Input
	ring  *ringbuf.Buffer[float32]
	loops atomic.Int32
	opts  options
}

// NewClip copies samples into a Clip that plays once unless WithLoops or
// SetLoops says otherwise.
func NewClip(in *patch.Input, samples []float32, opts ...Option) (*Clip, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}

	c := &Clip{
		in:   in,
		ring: ringbuf.New[float32](len(samples)),
		opts: buildOptions(opts),
	}
	c.ring.Push(samples)
	c.loops.Store(int32(c.opts.loops))
	return c, nil
}

// LoadClip decodes all of src into a Clip. src is not closed.
func LoadClip(in *patch.Input, src audio.Source, opts ...Option) (*Clip, error) {
	samples, err := audio.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("load clip: %w", err)
	}
	return NewClip(in, samples, opts...)
}

// SetLoops changes how many times the next Run plays the clip. Values
// below 1 mean once.
func (c *Clip) SetLoops(n int) { c.loops.Store(int32(max(n, 1))) }

// Loops is the configured play count.
func (c *Clip) Loops() int { return int(c.loops.Load()) }

// Len is the clip length in samples.
func (c *Clip) Len() int { return c.ring.Capacity() }

// Play runs the Clip on its own goroutine.
func (c *Clip) Play(ctx context.Context) error { return c.play(ctx, c.Run) }

// Stop asks a playing Clip to end.
func (c *Clip) Stop() { c.stop() }

// Wait blocks until Play has finished and returns its error.
func (c *Clip) Wait() error { return c.wait() }

// Run pushes the clip Loops times on the calling goroutine. It returns nil
// when done or when the Input disconnects. Run must not overlap with Play.
func (c *Clip) Run(ctx context.Context) error {
	if c.in == nil {
		return ErrNoInput
	}

	size := c.ring.Capacity()
	transfer := make([]float32, min(size, clipChunk))
	timer := time.NewTimer(c.opts.poll)
	timer.Stop()

	limit := c.Loops()
	for loop := range limit {
		// Everything was consumed, so the newest size slots are the clip.
		c.ring.SetLen(size, false)

		for c.ring.Len() > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			n := c.ring.Peek(transfer)
			pushed, err := c.in.Push(transfer[:n])
			if errors.Is(err, patch.ErrDisconnected) {
				c.opts.logger.Debug("clip input disconnected", "loop", loop)
				return nil
			}
			c.ring.Discard(pushed)

			if pushed == 0 {
				if err := sleep(ctx, timer, c.opts.poll); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
