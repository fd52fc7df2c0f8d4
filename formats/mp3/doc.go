// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
//	f, _ := os.Open("song.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//
// The decoder always yields interleaved stereo at the file's sample rate,
// normalized to [-1, 1). Use audio.NewMonoMixer or audio.NewResampler to
// adapt it to an engine format.
package mp3
