// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/utils"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian PCM.
const (
	channels  = 2
	frameSize = channels * 2
)

// mp3Reader is the part of gomp3.Decoder the source uses.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec mp3Reader
	buf []byte
	// carry holds bytes of a frame split across two decoder reads.
	carry int
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return len(s.buf) / 2 }

// Duration of the stream, or zero when the length is unknown.
func (s *source) Duration() time.Duration {
	n := s.dec.Length()
	if n <= 0 || s.dec.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(n/frameSize) * time.Second / time.Duration(s.dec.SampleRate())
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) / channels * frameSize
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(s.buf) < want {
		buf := make([]byte, want)
		copy(buf, s.buf[:s.carry])
		s.buf = buf
	}

	n, err := s.dec.Read(s.buf[s.carry:want])
	n += s.carry

	whole := n / frameSize * frameSize
	for i := 0; i < whole; i += 2 {
		dst[i/2] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[i:])))
	}
	s.carry = copy(s.buf, s.buf[whole:n])

	if err != nil && err != io.EOF {
		err = fmt.Errorf("decode mp3: %w", err)
	}
	return whole / 2, err
}

// Decoder reads MPEG-1/2 Layer III streams. Output is always stereo; mono
// files are duplicated to both channels by the decoder.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}
	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{dec: dec, buf: make([]byte, 8192)}
}
