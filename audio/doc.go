// SPDX-License-Identifier: EPL-2.0

// Package audio provides decoded audio streams and the converters that
// shape them for an engine.
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders in the formats packages return Sources, and the converters here
// wrap one Source in another so they chain into pipelines:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	stereo := audio.NewRemixer(src, 2)
//	at48k := audio.NewResampler(stereo, 48000)
//
// Samples are interleaved float32 values in [-1, 1]. ReadSamples returns
// io.EOF with the final samples or on the call after them.
//
// # Converters
//
// Remixer changes the channel count: it averages channels when folding
// down and repeats them when spreading out. NewMonoMixer is the common
// stereo-to-mono case.
//
// Resampler changes the sample rate with cubic interpolation over a
// four-frame window, low-pass filtering the input when downsampling.
//
// # Format Registry
//
// A Registry maps format keys and file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, ".wav", ".wave")
//	decoder, format, err := registry.Lookup("take1.wav")
//
// Unknown formats and extensions return ErrUnknownFormat.
package audio
