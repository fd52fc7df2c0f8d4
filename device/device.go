// SPDX-License-Identifier: EPL-2.0

package device

import "time"

// Callback is invoked by a Stream once per device period from the device's
// own thread. out holds frames interleaved output frames encoded as the
// stream's SampleType and must be filled completely; in holds captured
// frames, or is empty when the format has no input channels.
//
// A Callback runs under real-time constraints: it must not allocate, lock
// or block.
type Callback func(out, in []byte, frames int)

// Backend opens streams on one kind of audio device.
type Backend interface {
	// Open prepares a stream running format. The callback is not invoked
	// before Start.
	Open(format Format, callback Callback) (Stream, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(format Format, callback Callback) (Stream, error)

// Open calls f.
func (f BackendFunc) Open(format Format, callback Callback) (Stream, error) {
	return f(format, callback)
}

// Stream is an open device stream.
type Stream interface {
	// Start begins invoking the callback.
	Start() error
	// Stop halts the callback. It returns after the last invocation ended.
	Stop() error
	// Close releases the device. A closed stream cannot be restarted.
	Close() error
	// Time is the stream clock: how much audio the device has consumed.
	Time() time.Duration
	// CPULoad is the fraction of the period spent inside the callback,
	// averaged over recent invocations.
	CPULoad() float64
}
