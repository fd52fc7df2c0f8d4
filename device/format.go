// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"time"
)

// SampleType is the sample representation a device consumes.
// The values match the PortAudio sample format flags.
type SampleType uint32

const (
	Float32 SampleType = 0x01
	Int32   SampleType = 0x02
	Int24   SampleType = 0x04
	Int16   SampleType = 0x08
	Int8    SampleType = 0x10
	Uint8   SampleType = 0x20
)

// Size is the number of bytes one sample occupies, 0 if t is unknown.
func (t SampleType) Size() int {
	switch t {
	case Float32, Int32:
		return 4
	case Int24:
		return 3
	case Int16:
		return 2
	case Int8, Uint8:
		return 1
	default:
		return 0
	}
}

func (t SampleType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int24:
		return "int24"
	case Int16:
		return "int16"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("SampleType(%#x)", uint32(t))
	}
}

// ParseSampleType maps a String form back to its SampleType.
func ParseSampleType(s string) (SampleType, error) {
	for _, t := range []SampleType{Float32, Int32, Int24, Int16, Int8, Uint8} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedSampleType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t SampleType) MarshalText() ([]byte, error) {
	if t.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSampleType, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SampleType) UnmarshalText(text []byte) error {
	v, err := ParseSampleType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Format is the fixed channel, rate and sample tuple a stream runs with.
type Format struct {
	// InputChannels captured from the device. Default: 0
	InputChannels int `json:"input_channels"`

	// OutputChannels written to the device, interleaved. Default: 2
	OutputChannels int `json:"output_channels"`

	// SampleType of the device buffers. Default: float32
	SampleType SampleType `json:"sample_type"`

	// SampleRate in Hz. Default: 48000
	SampleRate int `json:"sample_rate"`

	// FramesPerBuffer is the device period: frames handed to each callback.
	// Default: 512
	FramesPerBuffer int `json:"frames_per_buffer"`

	// BufferSize is the target amount of audio, in frames, kept queued
	// ahead of the device. Zero lets the engine fill its whole buffer.
	// Default: 48000 (one second)
	BufferSize int `json:"buffer_size"`
}

// DefaultFormat returns stereo float32 output at 48 kHz.
func DefaultFormat() Format {
	return Format{
		InputChannels:   0,
		OutputChannels:  2,
		SampleType:      Float32,
		SampleRate:      48000,
		FramesPerBuffer: 512,
		BufferSize:      48000,
	}
}

// Validate checks that f describes a stream a backend can open.
func (f Format) Validate() error {
	if f.InputChannels < 0 {
		return fmt.Errorf("%w: input_channels must not be negative, got %d", ErrInvalidFormat, f.InputChannels)
	}
	if f.OutputChannels <= 0 {
		return fmt.Errorf("%w: output_channels must be positive, got %d", ErrInvalidFormat, f.OutputChannels)
	}
	if f.SampleType.Size() == 0 {
		return fmt.Errorf("%w: %w: %s", ErrInvalidFormat, ErrUnsupportedSampleType, f.SampleType)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames_per_buffer must be positive, got %d", ErrInvalidFormat, f.FramesPerBuffer)
	}
	if f.BufferSize < 0 {
		return fmt.Errorf("%w: buffer_size must not be negative, got %d", ErrInvalidFormat, f.BufferSize)
	}
	return nil
}

// FrameSize is the number of bytes in one interleaved output frame.
func (f Format) FrameSize() int {
	return f.OutputChannels * f.SampleType.Size()
}

// Period is the wall-clock duration of one device callback.
func (f Format) Period() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.FramesPerBuffer) * time.Second / time.Duration(f.SampleRate)
}
