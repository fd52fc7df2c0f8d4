// SPDX-License-Identifier: EPL-2.0

package patch

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// Mixer is a fan-in bus: any number of Inputs summed into one stream.
//
// AddNewInput may be called from any goroutine. Pop and MaxPoppable must be
// called from a single consumer goroutine; they own the active list and
// never hold a lock while copying samples.
type Mixer struct {
	logger *slog.Logger

	mu       sync.Mutex
	pending  []*Output
	npending atomic.Int32

	active  []*Output
	nactive atomic.Int32
}

// NewMixer returns an empty Mixer.
func NewMixer(opts ...Option) *Mixer {
	o := buildOptions(opts)
	return &Mixer{logger: o.logger}
}

// AddNewInput creates an Output buffering 2*maxLatency samples for
// headroom against scheduling jitter, and returns the Input feeding it.
func (m *Mixer) AddNewInput(maxLatency int, gain float32) *Input {
	return m.AddNamedInput("", maxLatency, gain)
}

// AddNamedInput is AddNewInput with a label carried for diagnostics.
func (m *Mixer) AddNamedInput(name string, maxLatency int, gain float32) *Input {
	o := newOutput(name, 2*max(maxLatency, 0), gain)
	in := NewInput(o)

	m.mu.Lock()
	m.pending = append(m.pending, o)
	m.npending.Store(int32(len(m.pending)))
	m.mu.Unlock()

	return in
}

// Len is the number of connected Outputs, excluding ones not yet merged.
func (m *Mixer) Len() int { return int(m.nactive.Load()) }

func (m *Mixer) connectPending() {
	if m.npending.Load() == 0 {
		return
	}

	m.mu.Lock()
	m.active = append(m.active, m.pending...)
	clear(m.pending)
	m.pending = m.pending[:0]
	m.npending.Store(0)
	m.mu.Unlock()

	m.nactive.Store(int32(len(m.active)))
}

func (m *Mixer) prune(keep func(*Output) bool) {
	kept := m.active[:0]
	for _, o := range m.active {
		if keep(o) {
			kept = append(kept, o)
			continue
		}
		o.Close()
		m.log().Debug("mixer input pruned", "id", o.ID(), "name", o.Name())
	}
	clear(m.active[len(kept):])
	m.active = kept
	m.nactive.Store(int32(len(m.active)))
}

func (m *Mixer) log() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Pop zeroes dst and sums every connected Output into it. It returns the
// largest count any single Output contributed. Stale Outputs are dropped.
// ErrNoPatches is returned when nothing is left connected.
func (m *Mixer) Pop(dst []float32, useLatest bool) (int, error) {
	m.connectPending()
	clear(dst)

	most := 0
	stale := false
	for _, o := range m.active {
		n, err := o.MixIn(dst, useLatest)
		if err != nil {
			stale = true
			continue
		}
		most = max(most, n)
	}
	if stale {
		m.prune(func(o *Output) bool { return !o.IsStale() })
	}

	if len(m.active) == 0 {
		return 0, ErrNoPatches
	}
	return most, nil
}

// MaxPoppable returns the fewest samples buffered by any live Output, which
// is how much Pop can deliver without any source running dry.
func (m *Mixer) MaxPoppable() (int, error) {
	m.connectPending()

	least := math.MaxInt
	stale := false
	for _, o := range m.active {
		if o.IsStale() {
			stale = true
			continue
		}
		least = min(least, o.Len())
	}
	if stale {
		m.prune(func(o *Output) bool { return !o.IsStale() })
	}

	if len(m.active) == 0 {
		return 0, ErrNoPatches
	}
	return least, nil
}
