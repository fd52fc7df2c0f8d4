// SPDX-License-Identifier: EPL-2.0

package patch

import "errors"

var (
	// ErrDisconnected is returned by Input methods once the Output they feed
	// has been closed or collected. The producer should stop pushing.
	ErrDisconnected = errors.New("patch output disconnected")
	// ErrStale is returned by Output reads once no Input references the
	// Output any more. No new samples will ever arrive.
	ErrStale = errors.New("patch output is stale")
	// ErrNoPatches is returned by Mixer and Splitter when they have no live
	// connections. It signals "nothing to do", not a failure.
	ErrNoPatches = errors.New("no active patches")
	// ErrTooManyChannels is returned by the frame-aware Input methods when
	// a frame would not fit the conversion buffer of MaxChannels samples.
	ErrTooManyChannels = errors.New("too many channels")
)
