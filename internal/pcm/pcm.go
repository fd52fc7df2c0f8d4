// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to float32 sources.
package pcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntReader is the read half of the go-audio wav and aiff decoders.
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source normalizes integer samples from an IntReader to [-1, 1].
// It implements audio.Source.
type Source struct {
	dec      IntReader
	format   *goaudio.Format
	depth    int
	unsigned bool
	scale    float32
	buf      *goaudio.IntBuffer
}

// NewSource reads format-shaped PCM of bitDepth bits from dec. unsigned
// marks offset-binary samples, as in 8-bit WAV.
func NewSource(dec IntReader, format *goaudio.Format, bitDepth int, unsigned bool) *Source {
	return &Source{
		dec:      dec,
		format:   format,
		depth:    bitDepth,
		unsigned: unsigned,
		scale:    Scale(bitDepth),
		buf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: bitDepth,
		},
	}
}

// Scale is the factor mapping a signed sample of depth bits to [-1, 1).
func Scale(depth int) float32 {
	if depth <= 0 || depth > 32 {
		depth = 16
	}
	return 1 / float32(int64(1)<<(depth-1))
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return max(s.format.NumChannels, 1) }
func (s *Source) BitDepth() int   { return s.depth }
func (s *Source) BufSize() int    { return cap(s.buf.Data) }
func (s *Source) Close() error    { return nil }

// ReadSamples fills dst with whole frames. The decoder reporting zero
// samples is the end of the stream.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	ch := s.Channels()
	want := len(dst) / ch * ch
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	n -= n % ch
	if n <= 0 {
		if err != nil {
			return 0, fmt.Errorf("read pcm: %w", err)
		}
		return 0, io.EOF
	}

	var offset int
	if s.unsigned {
		offset = 1 << (s.depth - 1)
	}
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v-offset) * s.scale
	}
	if err != nil {
		return n, fmt.Errorf("read pcm: %w", err)
	}
	return n, nil
}

// ReadSeeker returns r itself when it can seek, otherwise its whole
// content in memory. The go-audio decoders need to seek between chunks.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffer input: %w", err)
	}
	return bytes.NewReader(data), nil
}
