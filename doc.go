// SPDX-License-Identifier: EPL-2.0

// Package audpatch is a real-time audio patching engine.
//
// Producers push float32 samples into patch cables, an engine mixes every
// cable into the buffer an audio device drains, and taps receive a copy of
// what the device plays. The pieces live in subpackages:
//
//   - ringbuf: the bounded single-producer ring every cable is built on.
//   - patch: Output, Input, Mixer, Splitter and Node.
//   - device: stream format, sample encoding and the backend contract,
//     with null, oto and portaudio backends below it.
//   - engine: the Engine joining a mixer, a device and output taps.
//   - source: generator streams, looping clips and file players.
//   - record: writes a tap to a WAV file.
//   - audio and formats: decoded sources for WAV, MP3, Ogg Vorbis and AIFF.
//
// This package wires the decoders into a registry and opens files by
// extension:
//
//	src, err := audpatch.Open("drums.ogg")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	in := eng.ConnectNewInput(eng.SampleRate() / 10 * eng.OutputChannels())
//	defer in.Close()
//	player := source.NewPlayer(in, src, eng.SampleRate(), eng.OutputChannels())
//	err = player.Run(ctx)
package audpatch
