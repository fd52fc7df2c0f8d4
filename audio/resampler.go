// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpatch/utils"
)

// maxEmptyReads is how many consecutive (0, nil) reads are tolerated before
// the source is considered stuck.
const maxEmptyReads = 100

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples; preserves channel count.
// When downsampling, a one-pole low-pass filter is applied to the input.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window holds four frames around the read position: t-1, t0, t+1,
	// t+2. real marks frames read from the source as opposed to edge
	// padding.
	window [4][]float32
	real   [4]bool
	primed bool

	// pos is the fractional position between window[1] and window[2].
	pos float64

	buf    []float32
	bufPos int
	bufLen int
	srcErr error

	lowpass bool
	state   []float32
}

// lowpassAlpha is the weight of the newest sample in the anti-aliasing
// filter.
const lowpassAlpha = 0.5

// NewResampler returns a Source running at dstRate. A non-positive dstRate
// keeps the source rate.
func NewResampler(src Source, dstRate int) *Resampler {
	if dstRate <= 0 {
		dstRate = src.SampleRate()
	}
	channels := max(src.Channels(), 1)
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		buf:      make([]float32, max(src.BufSize(), channels)/channels*channels),
		lowpass:  ratio > 1,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampled source: %w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst. It reports false once
// the source is exhausted or failed.
func (r *Resampler) readFrame(dst []float32) bool {
	for empty := 0; r.bufPos >= r.bufLen; empty++ {
		if r.srcErr != nil {
			return false
		}
		if empty >= maxEmptyReads {
			r.srcErr = io.ErrNoProgress
			return false
		}
		n, err := r.src.ReadSamples(r.buf)
		r.bufPos, r.bufLen = 0, n-n%r.channels
		if err != nil {
			r.srcErr = err
		}
	}

	copy(dst, r.buf[r.bufPos:r.bufPos+r.channels])
	r.bufPos += r.channels

	if r.lowpass {
		for c, v := range dst {
			r.state[c] = lowpassAlpha*v + (1-lowpassAlpha)*r.state[c]
			dst[c] = r.state[c]
		}
	}
	return true
}

// advance shifts the window by one frame, padding with the last frame once
// the source runs dry.
func (r *Resampler) advance() {
	oldest := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.real[:3], r.real[1:])
	r.window[3] = oldest

	r.real[3] = r.real[2] && r.readFrame(r.window[3])
	if !r.real[3] {
		copy(r.window[3], r.window[2])
	}
}

func (r *Resampler) prime() {
	r.primed = true

	// The first frame passes unfiltered and seeds the filter, so the
	// stream starts at full level instead of ramping up from silence.
	lowpass := r.lowpass
	r.lowpass = false
	ok := r.readFrame(r.window[1])
	r.lowpass = lowpass
	if !ok {
		return
	}
	r.real[1] = true
	if r.lowpass {
		copy(r.state, r.window[1])
	}
	copy(r.window[0], r.window[1])
	r.real[0] = true

	for i := 2; i < 4; i++ {
		r.real[i] = r.real[i-1] && r.readFrame(r.window[i])
		if !r.real[i] {
			copy(r.window[i], r.window[i-1])
		}
	}
}

// ReadSamples produces samples at the target rate. dst length must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.ratio == 1 {
		return r.src.ReadSamples(dst)
	}
	if !r.primed {
		r.prime()
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1 {
			r.pos--
			r.advance()
		}
		if !r.real[1] {
			break
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		written++
		r.pos += r.ratio
	}

	if written < frames {
		err := r.srcErr
		if err == nil || errors.Is(err, io.EOF) {
			err = io.EOF
		}
		return written * r.channels, err
	}
	return written * r.channels, nil
}
