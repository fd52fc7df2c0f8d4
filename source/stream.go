// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"time"

	"github.com/ik5/audpatch/patch"
	"github.com/ik5/audpatch/ringbuf"
)

// stagingSize is the local ring a Stream generates into, in samples.
const stagingSize = 1024

// Stream feeds an endless generator into an Input.
//
// The generator runs ahead into a local ring. Whatever the Input does not
// accept is rewound and offered again, so no generated sample is lost or
// repeated.
type Stream struct {
	runner

	in   *patch.Input
	gen  Generator
	opts options
}

// NewStream returns a Stream pulling gen into in.
func NewStream(in *patch.Input, gen Generator, opts ...Option) *Stream {
	return &Stream{in: in, gen: gen, opts: buildOptions(opts)}
}

// Play runs the Stream on its own goroutine until Stop, ctx ends or the
// Input disconnects.
func (s *Stream) Play(ctx context.Context) error { return s.play(ctx, s.Run) }

// Stop asks a playing Stream to end. Wait blocks until it has.
func (s *Stream) Stop() { s.stop() }

// Wait returns the error that ended Play.
func (s *Stream) Wait() error { return s.wait() }

// Run generates and pushes on the calling goroutine. It returns nil once
// the Input disconnects and ctx.Err() when ctx ends. Run must not overlap
// with Play.
func (s *Stream) Run(ctx context.Context) error {
	if s.in == nil || s.gen == nil {
		return ErrNoInput
	}

	ch := s.opts.channels
	ring := ringbuf.New[float32](max(stagingSize/ch, 1) * ch)
	transfer := make([]float32, ring.Capacity())

	timer := time.NewTimer(s.opts.poll)
	timer.Stop()

	s.opts.logger.Debug("stream started", "channels", ch)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := ring.Remainder() / ch * ch
		for i := 0; i < n; i += ch {
			v := s.gen.Next()
			for c := range ch {
				transfer[i+c] = v
			}
		}
		ring.Push(transfer[:n])

		got := ring.Pop(transfer)
		pushed, err := s.in.Push(transfer[:got])
		if errors.Is(err, patch.ErrDisconnected) {
			s.opts.logger.Debug("stream input disconnected")
			return nil
		}
		ring.SetLen(got-pushed, false)

		if pushed == 0 {
			if err := sleep(ctx, timer, s.opts.poll); err != nil {
				return err
			}
		}
	}
}
