// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audpatch/internal/audiotest"
)

func TestEncode_ThroughPlainWriter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	src := audiotest.NewRampSource(8000, 1, 800)
	if err := Encode(&out, src, 16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decoder{}.Decode(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	buf := make([]float32, 1000)
	n, _ := decoded.ReadSamples(buf)
	if n != 800 {
		t.Errorf("decoded %d samples, want 800", n)
	}
}

func TestEncode_ToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	src := audiotest.NewSineSource(16000, 2, 1600, 440)
	if err := Encode(f, src, 24); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Channels() != 2 || decoded.SampleRate() != 16000 {
		t.Errorf("decoded %d Hz, %d channels", decoded.SampleRate(), decoded.Channels())
	}
}

func TestEncode_SourceError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("decoder crashed")
	src := audiotest.NewSilentSource(8000, 1, 10)
	src.Err = errBroken

	if err := Encode(io.Discard, src, 16); !errors.Is(err, errBroken) {
		t.Errorf("Encode() error = %v, want %v", err, errBroken)
	}
}
