// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audpatch/internal/audiotest"
)

func readEverything(t *testing.T, src Source, chunk int) []float32 {
	t.Helper()

	buf := make([]float32, chunk)
	var out []float32
	for range 1_000_000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(44100, 2, 1000), 8000)
	if r.SampleRate() != 8000 || r.Channels() != 2 {
		t.Errorf("Resampler reports %d Hz, %d channels", r.SampleRate(), r.Channels())
	}
	if NewResampler(audiotest.NewSilentSource(44100, 2, 10), 0).SampleRate() != 44100 {
		t.Error("non-positive target rate must keep the source rate")
	}
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		frames   int
		want     int
	}{
		{name: "same rate", from: 8000, to: 8000, frames: 1000, want: 1000},
		{name: "double", from: 8000, to: 16000, frames: 1000, want: 2000},
		{name: "halve", from: 16000, to: 8000, frames: 1000, want: 500},
		{name: "cd to telephone", from: 44100, to: 8000, frames: 44100, want: 8000},
		{name: "telephone to dvd", from: 8000, to: 48000, frames: 800, want: 4800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.from, 2, tt.frames, 100)
			samples := readEverything(t, NewResampler(src, tt.to), 512)

			frames := len(samples) / 2
			if diff := frames - tt.want; diff < -1 || diff > 1 {
				t.Errorf("resampled to %d frames, want %d", frames, tt.want)
			}
		})
	}
}

func TestResampler_PreservesConstantSignal(t *testing.T) {
	t.Parallel()

	for _, to := range []int{11025, 22050, 96000} {
		src := audiotest.NewConstantSource(44100, 1, 4410, 0.5)
		samples := readEverything(t, NewResampler(src, to), 333)

		for i, v := range samples {
			if math.Abs(float64(v-0.5)) > 1e-4 {
				t.Fatalf("to %d Hz: sample %d = %v, want 0.5", to, i, v)
			}
		}
	}
}

func TestResampler_FollowsSine(t *testing.T) {
	t.Parallel()

	const freq = 200
	src := audiotest.NewSineSource(8000, 1, 8000, freq)
	samples := readEverything(t, NewResampler(src, 16000), 1024)

	// Skip the edges, where the window is padded.
	for i := 4; i < len(samples)-4; i++ {
		want := math.Sin(2 * math.Pi * freq * float64(i) / 16000)
		if math.Abs(float64(samples[i])-want) > 0.01 {
			t.Fatalf("sample %d = %v, want %v", i, samples[i], want)
		}
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 100), 16000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 1, 0), 16000)
	n, err := r.ReadSamples(make([]float32, 16))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
}

func TestResampler_PropagatesSourceError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("corrupt frame")
	src := audiotest.NewSilentSource(8000, 1, 4)
	src.Err = errBroken

	r := NewResampler(src, 16000)
	_, err := r.ReadSamples(make([]float32, 64))
	if !errors.Is(err, errBroken) {
		t.Errorf("ReadSamples() error = %v, want %v", err, errBroken)
	}
}

type stuckSource struct{ *audiotest.MockSource }

func (stuckSource) ReadSamples([]float32) (int, error) { return 0, nil }

func TestResampler_StuckSource(t *testing.T) {
	t.Parallel()

	r := NewResampler(stuckSource{audiotest.NewSilentSource(8000, 1, 4)}, 16000)
	if _, err := r.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("ReadSamples() error = %v, want io.ErrNoProgress", err)
	}
}

func TestResampler_CloseClosesSource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 4)
	if err := NewResampler(src, 16000).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Error("source not closed")
	}
}

func BenchmarkResampler_44100To48000(b *testing.B) {
	src := audiotest.NewSineSource(44100, 2, math.MaxInt32, 440)
	r := NewResampler(src, 48000)
	dst := make([]float32, 1024)

	b.ReportAllocs()
	for b.Loop() {
		r.ReadSamples(dst)
	}
}
