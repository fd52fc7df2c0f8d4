// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"time"

	"github.com/ik5/audpatch/device"
)

// Info is a point-in-time snapshot of an Engine.
type Info struct {
	Format device.Format `json:"format"`
	State  string        `json:"state"`

	// Time is the device stream clock, zero while stopped.
	Time time.Duration `json:"time"`
	// CPULoad is the share of each device period spent in the callback.
	CPULoad float64 `json:"cpu_load"`

	// Buffered is the number of samples queued for the device.
	Buffered int `json:"buffered"`
	// Capacity of the device-facing buffer in samples.
	Capacity int `json:"capacity"`
	// Underruns counts callbacks that found less audio than requested.
	Underruns uint64 `json:"underruns"`

	Inputs int `json:"inputs"`
	Taps   int `json:"taps"`
}

// Latency is the playback delay of the queued samples.
func (i Info) Latency() time.Duration {
	frames := i.Buffered / max(i.Format.OutputChannels, 1)
	if i.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(i.Format.SampleRate)
}
