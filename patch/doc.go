// SPDX-License-Identifier: EPL-2.0

// Package patch implements patch cables and the buses built from them.
//
// # Cables
//
// A cable is an Input/Output pair sharing one bounded ring buffer. The
// Output is the owning end; the Input holds a weak reference to it:
//
//	out := patch.NewOutput(1024, 1.0)
//	in := patch.NewInput(out)
//	defer in.Close()
//
//	n, err := in.Push(samples) // err == patch.ErrDisconnected once out is gone
//
// Every Input, including clones made with Clone, counts as one producer.
// When the last one is closed the Output becomes stale: reads return
// ErrStale and the bus holding it drops it on its next cycle. There is no
// teardown handshake between producer and consumer.
//
// # Buses
//
// Mixer sums many Inputs into one stream (fan-in). Splitter copies one
// stream to many Outputs (fan-out). Node puts a Processor between a Mixer
// and a Splitter:
//
//	node := patch.NewNode(patch.Gain(0.5))
//	in := node.AddNewInput(512, 1)
//	out := node.AddNewOutput(512, 1)
//	node.Process()
//
// New connections are queued under a short-lived lock and merged at the
// start of each cycle, so registering a producer never waits for a mix in
// progress and the mix never holds a lock while copying.
//
// # Backpressure
//
// A full Output accepts fewer samples than offered and an empty one yields
// fewer than asked for. Counts are always returned; neither case is an
// error.
package patch
