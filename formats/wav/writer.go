// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/utils"
)

// Writer encodes float32 samples as integer PCM WAV.
type Writer struct {
	enc      *wav.Encoder
	depth    int
	channels int
	buf      *goaudio.IntBuffer
	frames   int64
}

// NewWriter starts a WAV file on w. The header is completed by Close,
// which is why w must be able to seek.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	if !supportedDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedWavLayout, sampleRate, channels)
	}

	format := &goaudio.Format{NumChannels: channels, SampleRate: sampleRate}
	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		depth:    bitDepth,
		channels: channels,
		buf:      &goaudio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}, nil
}

// Write appends interleaved samples. Trailing samples that do not fill a
// frame are dropped.
func (w *Writer) Write(samples []float32) error {
	n := len(samples) / w.channels * w.channels
	if n == 0 {
		return nil
	}

	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	for i, v := range samples[:n] {
		w.buf.Data[i] = w.quantize(v)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	w.frames += int64(n / w.channels)
	return nil
}

func (w *Writer) quantize(v float32) int {
	switch w.depth {
	case 8:
		return int(utils.Float32ToUint8(v))
	case 24:
		return int(utils.Float32ToInt24(v))
	case 32:
		return int(utils.Float32ToInt32(v))
	default:
		return int(utils.Float32ToInt16(v))
	}
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close finalizes the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.frames == 0 {
		// The encoder emits its headers on the first Write.
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}

// Encode writes all of src to w as a WAV file of bitDepth bits. A w that
// cannot seek receives the file once it is complete.
func Encode(w io.Writer, src audio.Source, bitDepth int) error {
	ws, ok := w.(io.WriteSeeker)
	var mem *memFile
	if !ok {
		mem = &memFile{}
		ws = mem
	}

	out, err := NewWriter(ws, src.SampleRate(), src.Channels(), bitDepth)
	if err != nil {
		return err
	}

	ch := src.Channels()
	buf := make([]float32, max(src.BufSize(), ch)/ch*ch)
	for {
		n, rerr := src.ReadSamples(buf)
		if err := out.Write(buf[:n]); err != nil {
			return err
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read source: %w", rerr)
		}
		if n == 0 {
			return io.ErrNoProgress
		}
	}

	if err := out.Close(); err != nil {
		return err
	}
	if mem != nil {
		if _, err := w.Write(mem.data); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
	}
	return nil
}

// memFile is an in-memory io.WriteSeeker.
type memFile struct {
	data   []byte
	offset int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.offset + int64(len(p))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.offset:], p)
	m.offset = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.offset + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if next < 0 {
		return 0, errors.New("negative position")
	}
	m.offset = next
	return next, nil
}
