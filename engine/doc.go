// SPDX-License-Identifier: EPL-2.0

// Package engine drives an audio device from a graph of patch cables.
//
// An Engine owns three things: a Mixer that every producer connects to, a
// device-facing ring buffer, and a Splitter of monitoring taps. Once
// started, each device period runs the same cycle:
//
//  1. the device callback drains one period from the ring buffer, encodes
//     it to the device sample type and wakes the pump;
//  2. the pump goroutine asks the mixer how much every input can supply,
//     mixes that much (bounded by free space and the format's BufferSize),
//     pushes it into the ring buffer and copies it to the taps.
//
// The callback never allocates, locks or blocks. A callback that finds the
// ring buffer short plays silence for the rest of the period and counts an
// underrun; see Info.
//
// Capture is not routed. A format with InputChannels opens the device in
// duplex mode, but the captured frames are discarded by the callback and
// never reach the mixer or the taps.
//
// Typical use:
//
//	eng, err := engine.New(device.DefaultFormat(), null.New(nil))
//	if err != nil {
//		return err
//	}
//	in := eng.ConnectNewInput(2048)
//	defer in.Close()
//
//	if err := eng.Start(); err != nil {
//		return err
//	}
//	defer eng.Shutdown()
//
//	in.Push(samples) // from any goroutine
package engine
