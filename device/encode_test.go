// SPDX-License-Identifier: EPL-2.0

package device

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	src := []float32{0, 1, -1, 2}

	tests := []struct {
		typ  SampleType
		want []byte
	}{
		{Int16, []byte{0, 0, 0xff, 0x7f, 0x01, 0x80, 0xff, 0x7f}},
		{Int8, []byte{0, 0x7f, 0x81, 0x7f}},
		{Uint8, []byte{128, 255, 1, 255}},
		{Int24, []byte{0, 0, 0, 0xff, 0xff, 0x7f, 0x01, 0x00, 0x80, 0xff, 0xff, 0x7f}},
		{Int32, []byte{0, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f, 0x01, 0, 0, 0x80, 0xff, 0xff, 0xff, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			t.Parallel()

			dst := make([]byte, len(src)*tt.typ.Size())
			if n := Encode(dst, src, tt.typ); n != len(src) {
				t.Fatalf("Encode() = %d, want %d", n, len(src))
			}
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("Encode() = % x, want % x", dst, tt.want)
			}
		})
	}
}

func TestEncode_Float32Unclamped(t *testing.T) {
	t.Parallel()

	src := []float32{0.5, 2}
	dst := make([]byte, 8)
	Encode(dst, src, Float32)

	for i, want := range src {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:]))
		if got != want {
			t.Errorf("sample %d = %v, want %v", i, got, want)
		}
	}
}

func TestEncode_ShortDestination(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 5)
	if n := Encode(dst, []float32{1, 1, 1}, Int16); n != 2 {
		t.Errorf("Encode() = %d, want 2", n)
	}
	if dst[4] != 0 {
		t.Error("Encode() wrote past the last whole sample")
	}
	if n := Encode(dst, []float32{1}, SampleType(0)); n != 0 {
		t.Errorf("Encode(unknown) = %d, want 0", n)
	}
}

func TestSilence(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3}
	Silence(buf, Uint8)
	if !bytes.Equal(buf, []byte{128, 128, 128}) {
		t.Errorf("Silence(Uint8) = %v", buf)
	}
	Silence(buf, Int16)
	if !bytes.Equal(buf, []byte{0, 0, 0}) {
		t.Errorf("Silence(Int16) = %v", buf)
	}
}

func TestEncode_ZeroAllocs(t *testing.T) {
	src := make([]float32, 1024)
	dst := make([]byte, len(src)*4)

	allocs := testing.AllocsPerRun(100, func() {
		Encode(dst, src, Int24)
		Encode(dst, src, Float32)
	})
	if allocs > 0 {
		t.Errorf("Encode allocated %v times, want 0", allocs)
	}
}

func BenchmarkEncode_Int16(b *testing.B) {
	src := make([]float32, 1024)
	for i := range src {
		src[i] = float32(math.Sin(float64(i) / 10))
	}
	dst := make([]byte, len(src)*2)

	b.ReportAllocs()
	for b.Loop() {
		Encode(dst, src, Int16)
	}
}
