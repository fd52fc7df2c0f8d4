// SPDX-License-Identifier: EPL-2.0

// Package record captures what an engine plays.
//
// A Recorder drains a tap from engine.OutputTap into a wav.Writer on its
// own goroutine:
//
//	tap := eng.OutputTap(eng.SampleRate() * eng.OutputChannels())
//	defer tap.Close()
//
//	err := record.ToFile(ctx, "session.wav", tap, eng.SampleRate(), eng.OutputChannels(), 16)
//
// The tap must be large enough to hold the audio produced between polls;
// the engine never waits for a slow tap.
package record
