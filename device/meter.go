// SPDX-License-Identifier: EPL-2.0

package device

import (
	"math"
	"sync/atomic"
	"time"
)

// loadSmoothing is the weight of the newest observation in the moving
// average.
const loadSmoothing = 0.1

// LoadMeter estimates the fraction of each period a callback consumes.
// Observe is called from the callback thread only; Load from anywhere.
type LoadMeter struct {
	bits atomic.Uint64 // math.Float64bits
}

// Observe records one callback that took elapsed out of a period.
func (m *LoadMeter) Observe(elapsed, period time.Duration) {
	if period <= 0 {
		return
	}
	sample := float64(elapsed) / float64(period)
	old := math.Float64frombits(m.bits.Load())
	m.bits.Store(math.Float64bits(old + (sample-old)*loadSmoothing))
}

// Load returns the smoothed load, 0 before the first observation.
func (m *LoadMeter) Load() float64 {
	return math.Float64frombits(m.bits.Load())
}

// FrameClock converts a count of consumed frames into stream time.
type FrameClock struct {
	rate   int
	frames atomic.Int64
}

// NewFrameClock returns a clock for a stream running at rate frames per
// second.
func NewFrameClock(rate int) *FrameClock {
	return &FrameClock{rate: rate}
}

// Advance adds n consumed frames.
func (c *FrameClock) Advance(n int) { c.frames.Add(int64(n)) }

// Frames is the number of frames consumed so far.
func (c *FrameClock) Frames() int64 { return c.frames.Load() }

// Time is the duration of the consumed frames.
func (c *FrameClock) Time() time.Duration {
	if c.rate <= 0 {
		return 0
	}
	f := c.frames.Load()
	sec := f / int64(c.rate)
	rem := f % int64(c.rate)
	return time.Duration(sec)*time.Second + time.Duration(rem)*time.Second/time.Duration(c.rate)
}
