// SPDX-License-Identifier: EPL-2.0

// Package portaudio runs device streams on PortAudio through
// github.com/gordonklaus/portaudio.
//
// Every sample type is supported natively, as is capture. Stream time and
// CPU load come from PortAudio itself. Samples are exchanged in host byte
// order, so this backend expects a little-endian host.
package portaudio

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/gordonklaus/portaudio"

	"github.com/ik5/audpatch/device"
)

// Backend opens streams on the default PortAudio devices.
type Backend struct{}

// New returns a PortAudio Backend.
func New() *Backend { return &Backend{} }

// Open implements device.Backend. PortAudio is initialized for the life of
// the stream and terminated on Close.
func (*Backend) Open(format device.Format, callback device.Callback) (device.Stream, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	s := &Stream{format: format, callback: callback}
	cb, err := s.typedCallback()
	if err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(
		format.InputChannels,
		format.OutputChannels,
		float64(format.SampleRate),
		format.FramesPerBuffer,
		cb,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open portaudio stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// Stream is an open PortAudio stream.
type Stream struct {
	format   device.Format
	callback device.Callback
	stream   *portaudio.Stream

	mu     sync.Mutex
	closed bool
}

func (s *Stream) typedCallback() (any, error) {
	switch s.format.SampleType {
	case device.Float32:
		return callbackFor[float32](s), nil
	case device.Int32:
		return callbackFor[int32](s), nil
	case device.Int24:
		return callbackFor[portaudio.Int24](s), nil
	case device.Int16:
		return callbackFor[int16](s), nil
	case device.Int8:
		return callbackFor[int8](s), nil
	case device.Uint8:
		return callbackFor[uint8](s), nil
	default:
		return nil, fmt.Errorf("%w: %s", device.ErrUnsupportedSampleType, s.format.SampleType)
	}
}

// callbackFor adapts the byte callback to the typed interleaved callback
// PortAudio expects for T.
func callbackFor[T any](s *Stream) func(in, out []T) {
	ch := s.format.OutputChannels
	return func(in, out []T) {
		s.callback(bytesOf(out), bytesOf(in), len(out)/ch)
	}
}

// bytesOf views samples as their raw bytes without copying.
func bytesOf[T any](samples []T) []byte {
	if len(samples) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(samples[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*size)
}

// Start begins the callback.
func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return device.ErrStreamClosed
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("start portaudio stream: %w", err)
	}
	return nil
}

// Stop waits for pending buffers to play and halts the callback.
func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("stop portaudio stream: %w", err)
	}
	return nil
}

// Close releases the stream and PortAudio.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return device.ErrStreamClosed
	}
	s.closed = true

	err := s.stream.Close()
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}
	if err != nil {
		return fmt.Errorf("close portaudio stream: %w", err)
	}
	return nil
}

// Time is the PortAudio stream clock.
func (s *Stream) Time() time.Duration { return s.stream.Time() }

// CPULoad is PortAudio's estimate of the callback's share of the period.
func (s *Stream) CPULoad() float64 { return s.stream.CpuLoad() }
