// SPDX-License-Identifier: EPL-2.0

// Package source has the producers that feed an engine.
//
// Each producer owns a patch.Input and pushes into it from a goroutine,
// backing off while the Input is full:
//
//   - Stream pulls an endless Generator (Sine, WhiteNoise, PinkNoise or a
//     GeneratorFunc) through a small local ring.
//   - Clip loops samples held in memory.
//   - Player streams an audio.Source, converted to the engine's channel
//     count and sample rate.
//
// Run blocks on the calling goroutine and fits errgroup. Play, Stop and
// Wait do the same on a goroutine the producer manages:
//
//	in := eng.ConnectNewInput(4096)
//	defer in.Close()
//
//	noise := source.NewStream(in, source.NewPinkNoise(12, 1), source.WithChannels(2))
//	noise.Play(ctx)
//	defer noise.Stop()
package source
