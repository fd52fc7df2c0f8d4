// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// # Decoding
//
//	f, _ := os.Open("take1.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, wav.ErrNotWavFile), ErrOnlyPCMSupported, ...
//	}
//
// Any channel count is accepted at 8, 16, 24 or 32 bits. 8-bit files are
// offset binary, as the format requires; everything else is signed. Samples
// come back interleaved and normalized to [-1, 1).
//
// Inputs that cannot seek (pipes, network bodies) are read into memory
// before decoding.
//
// # Encoding
//
// Writer streams float32 blocks into a file and completes the header on
// Close, so it needs an io.WriteSeeker:
//
//	f, _ := os.Create("capture.wav")
//	w, _ := wav.NewWriter(f, 48000, 2, 16)
//	w.Write(block)
//	w.Close()
//	f.Close()
//
// Encode drains a whole audio.Source. It accepts any io.Writer and builds
// the file in memory when the writer cannot seek.
package wav
