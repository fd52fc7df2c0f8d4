// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles shared by the audpatch packages:
// generated sources that satisfy audio.Source without importing it, and a
// device backend whose clock is advanced by hand.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame.
type Waveform func(frame, ch int) float32

// MockSource generates a fixed number of frames from a Waveform.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	read       int
	waveform   Waveform

	// BufferSize is returned by BufSize. Default: 4096
	BufferSize int
	// Err, when set, is returned instead of io.EOF at the end of the data.
	Err error

	closed bool
}

// NewMockSource returns a source of frames frames at sampleRate.
func NewMockSource(sampleRate, channels, frames int, waveform Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
		BufferSize: 4096,
	}
}

// NewSilentSource returns a source of zeros.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewSineSource returns the same sine wave on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource returns value on every channel of every frame.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 {
		return value
	})
}

// NewChannelSource returns frames where channel c holds values[c].
func NewChannelSource(sampleRate, frames int, values ...float32) *MockSource {
	return NewMockSource(sampleRate, len(values), frames, func(_, ch int) float32 {
		return values[ch]
	})
}

// NewRampSource returns frame/frames on every channel, rising from 0.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(frame) / float32(frames)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return m.BufferSize }

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() { m.read = 0 }

// Remaining is the number of frames not read yet.
func (m *MockSource) Remaining() int { return m.frames - m.read }

func (m *MockSource) end() error {
	if m.Err != nil {
		return m.Err
	}
	return io.EOF
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.read >= m.frames {
		return 0, m.end()
	}

	n := min(len(dst)/m.channels, m.frames-m.read)
	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.read+f, c)
		}
	}
	m.read += n

	if m.read >= m.frames {
		return n * m.channels, m.end()
	}
	return n * m.channels, nil
}
