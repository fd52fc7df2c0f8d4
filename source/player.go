// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/patch"
)

// maxEmptyReads is how many (0, nil) reads in a row a Player tolerates.
const maxEmptyReads = 100

// Player streams a decoded file into an Input, converting it to the
// engine's channel count and sample rate on the way.
type Player struct {
	runner

	in   *patch.Input
	src  audio.Source
	opts options
}

// NewPlayer wraps src with a Remixer and a Resampler as needed so that it
// produces channels channels at sampleRate.
func NewPlayer(in *patch.Input, src audio.Source, sampleRate, channels int, opts ...Option) *Player {
	if channels > 0 && src.Channels() != channels {
		src = audio.NewRemixer(src, channels)
	}
	if sampleRate > 0 && src.SampleRate() != sampleRate {
		src = audio.NewResampler(src, sampleRate)
	}
	return &Player{in: in, src: src, opts: buildOptions(opts)}
}

// Source is the converted source the Player reads.
func (p *Player) Source() audio.Source { return p.src }

// Close closes the underlying source.
func (p *Player) Close() error { return p.src.Close() }

// Play runs the Player on its own goroutine.
func (p *Player) Play(ctx context.Context) error { return p.play(ctx, p.Run) }

// Stop asks a playing Player to end.
func (p *Player) Stop() { p.stop() }

// Wait blocks until Play has finished and returns its error.
func (p *Player) Wait() error { return p.wait() }

// Run reads the source to its end on the calling goroutine, waiting for
// room in the Input as needed. Reaching the end of the source and the Input
// disconnecting both return nil.
func (p *Player) Run(ctx context.Context) error {
	if p.in == nil {
		return ErrNoInput
	}

	ch := max(p.src.Channels(), 1)
	buf := make([]float32, max(p.src.BufSize(), ch)/ch*ch)

	var played int64
	defer func() {
		p.opts.logger.Debug("player finished", "samples", played)
	}()

	empty := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := p.src.ReadSamples(buf)
		pushed, err := pushAll(ctx, p.in, buf[:n], p.opts.poll)
		played += int64(pushed)
		if errors.Is(err, patch.ErrDisconnected) {
			return nil
		}
		if err != nil {
			return err
		}

		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			p.opts.logger.Error("cannot read source", "error", rerr)
			return fmt.Errorf("read source: %w", rerr)
		}

		if n > 0 {
			empty = 0
		} else if empty++; empty >= maxEmptyReads {
			return io.ErrNoProgress
		}
	}
}
