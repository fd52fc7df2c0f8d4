// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/internal/audiotest"
)

// Example_resampler converts one second of a 44.1 kHz tone to 16 kHz.
func Example_resampler() {
	source := audiotest.NewSineSource(44100, 1, 44100, 440.0)
	resampler := audio.NewResampler(source, 16000)

	samples, err := audio.ReadAll(resampler)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("rate: %d Hz, channels: %d\n", resampler.SampleRate(), resampler.Channels())
	fmt.Printf("about %.0f samples\n", math.Round(float64(len(samples))/100)*100)
	// Output:
	// rate: 16000 Hz, channels: 1
	// about 16000 samples
}

// Example_remixer folds stereo to mono and back out to four channels.
func Example_remixer() {
	source := audiotest.NewChannelSource(16000, 4, 0.2, 0.6)

	mono := audio.NewMonoMixer(source)
	quad := audio.NewRemixer(mono, 4)

	buf := make([]float32, 8)
	n, err := quad.ReadSamples(buf)
	fmt.Printf("%d samples, eof=%v: %.1f\n", n, err == io.EOF, buf[:n])
	// Output:
	// 8 samples, eof=false: [0.4 0.4 0.4 0.4 0.4 0.4 0.4 0.4]
}

// Example_registry picks a decoder by file extension.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("wav", audio.DecoderFunc(func(io.Reader) (audio.Source, error) {
		return audiotest.NewSilentSource(8000, 1, 8000), nil
	}), ".wav", ".wave")

	_, format, err := registry.Lookup("take1.WAV")
	fmt.Println(format, err)

	_, _, err = registry.Lookup("take1.flac")
	fmt.Println(err)
	// Output:
	// wav <nil>
	// unknown audio format: "take1.flac"
}
