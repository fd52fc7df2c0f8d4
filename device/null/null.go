// SPDX-License-Identifier: EPL-2.0

// Package null provides a device backend with no hardware behind it.
//
// Streams are driven by a ticker at the format's period, so an engine runs
// in real time exactly as it would against a sound card. The encoded output
// of every period can be captured by setting Backend.Writer; raw PCM in the
// stream's sample type is written, with no header.
package null

import (
	"io"
	"sync"
	"time"

	"github.com/ik5/audpatch/device"
)

// Backend opens clock-driven streams.
type Backend struct {
	// Writer receives the output buffer after every callback when set.
	// Writes happen on the stream goroutine; the first write error stops
	// further writing and is reported by Err.
	Writer io.Writer
}

// New returns a Backend that optionally copies the output to w.
func New(w io.Writer) *Backend {
	return &Backend{Writer: w}
}

// Open implements device.Backend.
func (b *Backend) Open(format device.Format, callback device.Callback) (device.Stream, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	frames := format.FramesPerBuffer
	return &Stream{
		format:   format,
		callback: callback,
		writer:   b.Writer,
		out:      make([]byte, frames*format.FrameSize()),
		in:       make([]byte, frames*format.InputChannels*format.SampleType.Size()),
		clock:    device.NewFrameClock(format.SampleRate),
	}, nil
}

// Stream is a ticker-driven device.Stream.
type Stream struct {
	format   device.Format
	callback device.Callback
	writer   io.Writer

	out, in []byte

	clock *device.FrameClock
	load  device.LoadMeter

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
	closed  bool
	err     error
}

// Start begins invoking the callback once per period.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return device.ErrStreamClosed
	}
	if s.running {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.run(s.stop, s.done)
	return nil
}

func (s *Stream) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	period := s.format.Period()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(period)
		}
	}
}

func (s *Stream) tick(period time.Duration) {
	begin := time.Now()
	s.callback(s.out, s.in, s.format.FramesPerBuffer)
	s.load.Observe(time.Since(begin), period)
	s.clock.Advance(s.format.FramesPerBuffer)

	if s.writer == nil || s.failed() {
		return
	}
	if _, err := s.writer.Write(s.out); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

func (s *Stream) failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

// Stop halts the ticker and waits for an in-flight callback to return.
func (s *Stream) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	return nil
}

// Close stops the stream; it cannot be started again.
func (s *Stream) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return device.ErrStreamClosed
	}
	s.closed = true
	return nil
}

// Time is the duration of audio consumed so far.
func (s *Stream) Time() time.Duration { return s.clock.Time() }

// CPULoad is the smoothed share of the period spent in the callback.
func (s *Stream) CPULoad() float64 { return s.load.Load() }

// Err returns the first error from Writer, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
