// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"
	"time"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audpatch/audio"
)

// oggReader is the part of oggvorbis.Reader the source uses. Read fills p
// with interleaved samples and returns the sample count.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read(p []float32) (int, error)
}

type source struct {
	dec      oggReader
	channels int
	buf      []float32
	// carry counts samples of a frame split across two decoder reads.
	carry int
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return len(s.buf) }

// Duration of the stream, or zero when the length is unknown.
func (s *source) Duration() time.Duration {
	n := s.dec.Length()
	if n <= 0 || s.dec.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(s.dec.SampleRate())
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) / s.channels * s.channels
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(s.buf) < want {
		buf := make([]float32, want)
		copy(buf, s.buf[:s.carry])
		s.buf = buf
	}

	n, err := s.dec.Read(s.buf[s.carry:want])
	n += s.carry

	whole := n / s.channels * s.channels
	copy(dst, s.buf[:whole])
	s.carry = copy(s.buf, s.buf[whole:n])

	if err != nil && err != io.EOF {
		err = fmt.Errorf("decode vorbis: %w", err)
	}
	return whole, err
}

// Decoder reads Ogg Vorbis streams with any channel count.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}
	return newSource(dec)
}

func newSource(dec oggReader) (*source, error) {
	if dec.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidStream, dec.Channels())
	}
	return &source{
		dec:      dec,
		channels: dec.Channels(),
		buf:      make([]float32, 4096/dec.Channels()*dec.Channels()),
	}, nil
}
