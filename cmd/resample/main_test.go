// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audpatch"
	"github.com/ik5/audpatch/formats/wav"
	"github.com/ik5/audpatch/internal/audiotest"
)

func writeInput(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src := audiotest.NewSineSource(48000, 2, 4800, 440)
	if err := wav.Encode(f, src, 16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return path
}

func TestConvert(t *testing.T) {
	t.Parallel()

	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "out.wav")

	if err := convert(in, out, 8000, 1, 16); err != nil {
		t.Fatalf("convert() error = %v", err)
	}

	src, err := audpatch.Open(out)
	if err != nil {
		t.Fatalf("Open(out) error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Fatalf("output is %d Hz, %d channels, want 8000 Hz mono", src.SampleRate(), src.Channels())
	}

	buf := make([]float32, 4096)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err != nil {
			break
		}
	}
	// 4800 frames at 48 kHz is 800 frames at 8 kHz.
	if math.Abs(float64(total-800)) > 2 {
		t.Errorf("output frames = %d, want about 800", total)
	}
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()

	in := writeInput(t)
	dir := t.TempDir()

	if err := convert(filepath.Join(dir, "missing.wav"), filepath.Join(dir, "o.wav"), 8000, 1, 16); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing input: error = %v, want os.ErrNotExist", err)
	}
	if err := convert(in, filepath.Join(dir, "no", "o.wav"), 8000, 1, 16); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing output dir: error = %v, want os.ErrNotExist", err)
	}
	if err := convert(in, filepath.Join(dir, "o.wav"), 8000, 1, 12); !errors.Is(err, wav.ErrUnsupportedBitDepth) {
		t.Errorf("12-bit output: error = %v, want ErrUnsupportedBitDepth", err)
	}
}
