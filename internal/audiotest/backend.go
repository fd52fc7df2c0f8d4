// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"
	"time"

	"github.com/ik5/audpatch/device"
)

// ErrDevice is the error injected by Backend failure fields in tests that
// do not care which error it is.
var ErrDevice = errors.New("audiotest: device failure")

// Backend is a device.Backend whose streams only run their callback when a
// test calls Tick, making engine tests independent of wall-clock time.
type Backend struct {
	OpenErr  error
	StartErr error
	StopErr  error
	CloseErr error

	mu      sync.Mutex
	streams []*Stream
}

// Open implements device.Backend.
func (b *Backend) Open(format device.Format, callback device.Callback) (device.Stream, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	s := &Stream{
		backend:  b,
		format:   format,
		callback: callback,
		out:      make([]byte, format.FramesPerBuffer*format.FrameSize()),
		in:       make([]byte, format.FramesPerBuffer*format.InputChannels*format.SampleType.Size()),
		clock:    device.NewFrameClock(format.SampleRate),
	}

	b.mu.Lock()
	b.streams = append(b.streams, s)
	b.mu.Unlock()
	return s, nil
}

// Opened is the number of streams opened so far.
func (b *Backend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams)
}

// Last returns the most recently opened stream, or nil.
func (b *Backend) Last() *Stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) == 0 {
		return nil
	}
	return b.streams[len(b.streams)-1]
}

// Stream is a manually clocked device.Stream.
type Stream struct {
	backend  *Backend
	format   device.Format
	callback device.Callback

	out, in []byte
	clock   *device.FrameClock

	mu      sync.Mutex
	started bool
	closed  bool
}

// Tick runs one device period if the stream is started and returns the
// encoded output buffer. The slice is reused by the next Tick. A stopped
// stream returns nil without calling the callback.
func (s *Stream) Tick() []byte {
	s.mu.Lock()
	running := s.started && !s.closed
	s.mu.Unlock()
	if !running {
		return nil
	}

	s.callback(s.out, s.in, s.format.FramesPerBuffer)
	s.clock.Advance(s.format.FramesPerBuffer)
	return s.out
}

// Capture is the input buffer handed to the callback on every Tick. Tests
// may fill it to simulate captured audio.
func (s *Stream) Capture() []byte { return s.in }

// Start implements device.Stream.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return device.ErrStreamClosed
	}
	if s.backend.StartErr != nil {
		return s.backend.StartErr
	}
	s.started = true
	return nil
}

// Stop implements device.Stream.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return s.backend.StopErr
}

// Close implements device.Stream.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return device.ErrStreamClosed
	}
	s.closed = true
	s.started = false
	return s.backend.CloseErr
}

// Running reports whether Start succeeded and neither Stop nor Close
// followed.
func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.closed
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Time implements device.Stream.
func (s *Stream) Time() time.Duration { return s.clock.Time() }

// CPULoad implements device.Stream. A manual stream has no load.
func (s *Stream) CPULoad() float64 { return 0 }
