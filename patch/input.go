// SPDX-License-Identifier: EPL-2.0

package patch

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"weak"

	goaudio "github.com/go-audio/audio"
)

// chunkSize bounds the stack buffer used to convert or interleave samples.
const chunkSize = 256

// MaxChannels is the widest frame PushPlanar and the go-audio buffer
// methods accept.
const MaxChannels = chunkSize

// maxIntDepth is the widest integer sample PushIntBuffer normalizes.
const maxIntDepth = 32

// Input is the producer end of a patch cable.
//
// An Input holds a weak reference to its Output and counts as one alive
// producer for it until Close is called. Clone hands out another counted
// handle to the same Output. An Input that is dropped without Close is
// released when the garbage collector finds it unreachable.
type Input struct {
	out      weak.Pointer[Output]
	bound    bool
	released atomic.Bool
	cleanup  runtime.Cleanup
}

// NewInput binds a new Input to o and marks o as having one more producer.
// A nil o yields a disconnected Input.
func NewInput(o *Output) *Input {
	in := &Input{}
	if o == nil {
		in.released.Store(true)
		return in
	}

	o.alive.Add(1)
	in.out = weak.Make(o)
	in.bound = true
	in.cleanup = runtime.AddCleanup(in, releaseOutput, in.out)
	return in
}

func releaseOutput(out weak.Pointer[Output]) {
	if o := out.Value(); o != nil {
		o.alive.Add(-1)
	}
}

// Clone returns a new Input feeding the same Output. It counts separately:
// the Output goes stale only after every clone is closed.
func (in *Input) Clone() *Input {
	if in == nil || in.released.Load() {
		return NewInput(nil)
	}
	return NewInput(in.out.Value())
}

// Close releases the handle. It is idempotent; pushing through a closed
// Input returns ErrDisconnected.
func (in *Input) Close() {
	if in == nil || !in.released.CompareAndSwap(false, true) {
		return
	}
	if in.bound {
		in.cleanup.Stop()
		releaseOutput(in.out)
	}
}

func (in *Input) output() *Output {
	if in == nil || in.released.Load() {
		return nil
	}
	o := in.out.Value()
	if o == nil || o.closed.Load() {
		return nil
	}
	return o
}

// IsOutputAlive reports whether the Output still exists and has not been
// closed.
func (in *Input) IsOutputAlive() bool {
	return in.output() != nil
}

// SetGain sets the gain the Output applies when mixing. It is a no-op once
// disconnected.
func (in *Input) SetGain(v float32) {
	if o := in.output(); o != nil {
		o.setGain(v)
	}
}

// Remainder is how many samples the Output can accept right now.
func (in *Input) Remainder() (int, error) {
	o := in.output()
	if o == nil {
		return 0, ErrDisconnected
	}
	return o.buf.Remainder(), nil
}

// Push writes as many samples as fit into the Output and returns the count.
// A short count is backpressure, not an error.
func (in *Input) Push(samples []float32) (int, error) {
	o := in.output()
	if o == nil {
		return 0, ErrDisconnected
	}
	return o.buf.Push(samples), nil
}

// PushSample pushes a single mono sample.
func (in *Input) PushSample(v float32) (int, error) {
	frame := [1]float32{v}
	return in.pushFrames(frame[:], 1)
}

// PushStereo pushes one interleaved left/right frame, or nothing if the
// Output cannot take both samples.
func (in *Input) PushStereo(left, right float32) (int, error) {
	frame := [2]float32{left, right}
	return in.pushFrames(frame[:], 2)
}

// pushFrames pushes whole frames of channels samples only, so backpressure
// never splits a frame across channels.
func (in *Input) pushFrames(samples []float32, channels int) (int, error) {
	o := in.output()
	if o == nil {
		return 0, ErrDisconnected
	}
	fit := o.buf.Remainder() / channels * channels
	return o.buf.Push(samples[:min(len(samples), fit)]), nil
}

// PushPlanar interleaves one slice per channel and pushes the result. Only
// whole frames are pushed; the returned count is in samples. More than
// MaxChannels channels fail with ErrTooManyChannels.
func (in *Input) PushPlanar(channels [][]float32) (int, error) {
	nch := len(channels)
	if nch > MaxChannels {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyChannels, nch, MaxChannels)
	}
	if nch == 0 {
		return in.Push(nil)
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	var chunk [chunkSize]float32
	perChunk := chunkSize / nch
	pushed := 0
	for f := 0; f < frames; f += perChunk {
		m := min(perChunk, frames-f)
		for i := range m {
			for c, ch := range channels {
				chunk[i*nch+c] = ch[f+i]
			}
		}
		n, err := in.pushFrames(chunk[:m*nch], nch)
		pushed += n
		if err != nil || n < m*nch {
			return pushed, err
		}
	}
	return pushed, nil
}

// PushFloat32Buffer pushes the interleaved data of a go-audio buffer.
func (in *Input) PushFloat32Buffer(buf *goaudio.Float32Buffer) (int, error) {
	if buf == nil {
		return in.Push(nil)
	}
	ch, err := bufferChannels(buf.Format)
	if err != nil {
		return 0, err
	}
	return in.pushFrames(buf.Data, ch)
}

// PushFloatBuffer converts a float64 go-audio buffer and pushes it.
func (in *Input) PushFloatBuffer(buf *goaudio.FloatBuffer) (int, error) {
	if buf == nil {
		return in.Push(nil)
	}
	ch, err := bufferChannels(buf.Format)
	if err != nil {
		return 0, err
	}
	return pushConverted(in, buf.Data, ch, func(v float64) float32 {
		return float32(v)
	})
}

// PushIntBuffer normalizes integer PCM by its source bit depth (16 when
// unset, at most 32) and pushes it.
func (in *Input) PushIntBuffer(buf *goaudio.IntBuffer) (int, error) {
	if buf == nil {
		return in.Push(nil)
	}
	ch, err := bufferChannels(buf.Format)
	if err != nil {
		return 0, err
	}
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = 16
	}
	depth = min(depth, maxIntDepth)
	scale := 1 / float32(int64(1)<<(depth-1))
	return pushConverted(in, buf.Data, ch, func(v int) float32 {
		return float32(v) * scale
	})
}

// bufferChannels treats a buffer without a format as mono.
func bufferChannels(f *goaudio.Format) (int, error) {
	if f == nil || f.NumChannels <= 0 {
		return 1, nil
	}
	if f.NumChannels > MaxChannels {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyChannels, f.NumChannels, MaxChannels)
	}
	return f.NumChannels, nil
}

func pushConverted[S any](in *Input, data []S, channels int, conv func(S) float32) (int, error) {
	var chunk [chunkSize]float32
	step := chunkSize / channels * channels
	pushed := 0
	for off := 0; off < len(data); off += step {
		part := data[off:min(off+step, len(data))]
		for i, v := range part {
			chunk[i] = conv(v)
		}
		n, err := in.pushFrames(chunk[:len(part)], channels)
		pushed += n
		if err != nil || n < len(part) {
			return pushed, err
		}
	}
	if len(data) == 0 {
		return in.Push(nil)
	}
	return pushed, nil
}
