// SPDX-License-Identifier: EPL-2.0

// Package oto plays device streams through github.com/ebitengine/oto/v3.
//
// oto pulls audio from an io.Reader on its own goroutine; each Stream
// answers those reads by running the device callback one period at a time.
// oto allows a single context per process, so every stream opened after
// the first must use the same sample rate, channel count and sample type.
// Capture is not supported.
package oto

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audpatch/device"
)

var (
	contextMu     sync.Mutex
	sharedContext *oto.Context
	sharedFormat  device.Format
)

func sampleFormat(t device.SampleType) (oto.Format, error) {
	switch t {
	case device.Float32:
		return oto.FormatFloat32LE, nil
	case device.Int16:
		return oto.FormatSignedInt16LE, nil
	case device.Uint8:
		return oto.FormatUnsignedInt8, nil
	default:
		return 0, fmt.Errorf("%w: %s with oto", device.ErrUnsupportedSampleType, t)
	}
}

func sameLayout(a, b device.Format) bool {
	return a.SampleRate == b.SampleRate &&
		a.OutputChannels == b.OutputChannels &&
		a.SampleType == b.SampleType
}

// processContext returns the process oto context, creating it for format.
func processContext(format device.Format) (*oto.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if sharedContext != nil {
		if !sameLayout(sharedFormat, format) {
			return nil, fmt.Errorf("%w: oto is already running %d Hz, %d channels, %s",
				device.ErrInvalidFormat, sharedFormat.SampleRate, sharedFormat.OutputChannels, sharedFormat.SampleType)
		}
		return sharedContext, nil
	}

	sf, err := sampleFormat(format.SampleType)
	if err != nil {
		return nil, err
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.OutputChannels,
		Format:       sf,
		BufferSize:   format.Period(),
	})
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}
	<-ready

	sharedContext, sharedFormat = ctx, format
	return ctx, nil
}

// validate checks what oto can play before a context is touched.
func validate(format device.Format) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if format.InputChannels > 0 {
		return fmt.Errorf("%w: oto cannot capture", device.ErrInvalidFormat)
	}
	_, err := sampleFormat(format.SampleType)
	return err
}

// Backend opens oto streams.
type Backend struct{}

// New returns an oto Backend.
func New() *Backend { return &Backend{} }

// Open implements device.Backend.
func (*Backend) Open(format device.Format, callback device.Callback) (device.Stream, error) {
	if err := validate(format); err != nil {
		return nil, err
	}
	ctx, err := processContext(format)
	if err != nil {
		return nil, err
	}

	s := &Stream{
		format:   format,
		callback: callback,
		period:   make([]byte, format.FramesPerBuffer*format.FrameSize()),
		clock:    device.NewFrameClock(format.SampleRate),
	}
	s.pos = len(s.period)
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Stream is an oto player fed by the device callback.
type Stream struct {
	format   device.Format
	callback device.Callback
	player   *oto.Player

	// period and pos belong to the oto reader goroutine.
	period []byte
	pos    int

	clock *device.FrameClock
	load  device.LoadMeter

	running  atomic.Bool
	inFlight atomic.Int32

	mu     sync.Mutex
	closed bool
}

// Read implements io.Reader for oto. It never fails; a stopped stream
// reads as silence.
func (s *Stream) Read(p []byte) (int, error) {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	if !s.running.Load() {
		device.Silence(p, s.format.SampleType)
		return len(p), nil
	}

	frames := s.format.FramesPerBuffer
	periodTime := s.format.Period()
	n := 0
	for n < len(p) {
		if s.pos >= len(s.period) {
			begin := time.Now()
			s.callback(s.period, nil, frames)
			s.load.Observe(time.Since(begin), periodTime)
			s.clock.Advance(frames)
			s.pos = 0
		}
		c := copy(p[n:], s.period[s.pos:])
		s.pos += c
		n += c
	}
	return n, nil
}

// Start resumes playback.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return device.ErrStreamClosed
	}
	s.running.Store(true)
	s.player.Play()
	return nil
}

// Stop pauses playback and waits for a callback in progress to return.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	s.player.Pause()
	for s.inFlight.Load() > 0 {
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// Close releases the player. The shared oto context stays alive.
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
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}
	return nil
}

// Time is the duration of audio handed to oto.
func (s *Stream) Time() time.Duration { return s.clock.Time() }

// CPULoad is the smoothed share of the period spent in the callback.
func (s *Stream) CPULoad() float64 { return s.load.Load() }
