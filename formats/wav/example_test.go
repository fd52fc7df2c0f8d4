// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/audpatch/formats/wav"
	"github.com/ik5/audpatch/internal/audiotest"
)

// Example_roundTrip encodes a generated tone and decodes it again.
func Example_roundTrip() {
	tone := audiotest.NewSineSource(8000, 2, 800, 440)

	var file bytes.Buffer
	if err := wav.Encode(&file, tone, 16); err != nil {
		fmt.Println("encode:", err)
		return
	}

	src, err := wav.Decoder{}.Decode(bytes.NewReader(file.Bytes()))
	if err != nil {
		fmt.Println("decode:", err)
		return
	}

	total := 0
	buf := make([]float32, 256)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err != nil {
			break
		}
	}
	fmt.Printf("%d Hz, %d channels, %d frames\n", src.SampleRate(), src.Channels(), total/src.Channels())

	// Output:
	// 8000 Hz, 2 channels, 800 frames
}

// Example_notWAV shows the error for input that is not a RIFF/WAVE file.
func Example_notWAV() {
	_, err := wav.Decoder{}.Decode(strings.NewReader("ID3 this is an mp3, not a wav file"))
	fmt.Println(errors.Is(err, wav.ErrNotWavFile))

	// Output:
	// true
}
