// SPDX-License-Identifier: EPL-2.0

package patch

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// Splitter is a fan-out bus: one stream copied to every connected Output.
//
// AddNewPatch may be called from any goroutine. Push and MaxPushable must be
// called from a single producer goroutine.
type Splitter struct {
	logger *slog.Logger

	mu       sync.Mutex
	pending  []*Input
	npending atomic.Int32

	active  []*Input
	nactive atomic.Int32
}

// NewSplitter returns a Splitter with no sinks.
func NewSplitter(opts ...Option) *Splitter {
	o := buildOptions(opts)
	return &Splitter{logger: o.logger}
}

// AddNewPatch creates a sink buffering 2*maxLatency samples. The caller
// holds the only strong reference: closing the Output, or dropping it,
// disconnects the sink.
func (s *Splitter) AddNewPatch(maxLatency int, gain float32) *Output {
	return s.AddNamedPatch("", maxLatency, gain)
}

// AddNamedPatch is AddNewPatch with a label carried for diagnostics.
func (s *Splitter) AddNamedPatch(name string, maxLatency int, gain float32) *Output {
	o := newOutput(name, 2*max(maxLatency, 0), gain)
	in := NewInput(o)

	s.mu.Lock()
	s.pending = append(s.pending, in)
	s.npending.Store(int32(len(s.pending)))
	s.mu.Unlock()

	return o
}

// Len is the number of connected sinks, excluding ones not yet merged.
func (s *Splitter) Len() int { return int(s.nactive.Load()) }

func (s *Splitter) connectPending() {
	if s.npending.Load() == 0 {
		return
	}

	s.mu.Lock()
	s.active = append(s.active, s.pending...)
	clear(s.pending)
	s.pending = s.pending[:0]
	s.npending.Store(0)
	s.mu.Unlock()

	s.nactive.Store(int32(len(s.active)))
}

func (s *Splitter) pruneDisconnected() {
	kept := s.active[:0]
	for _, in := range s.active {
		if in.IsOutputAlive() {
			kept = append(kept, in)
			continue
		}
		in.Close()
		s.log().Debug("splitter sink pruned")
	}
	clear(s.active[len(kept):])
	s.active = kept
	s.nactive.Store(int32(len(s.active)))
}

func (s *Splitter) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Push offers src to every sink and returns the smallest count any sink
// accepted, since the most backpressured sink bounds the throughput.
// Disconnected sinks are dropped; ErrNoPatches means none are left.
func (s *Splitter) Push(src []float32) (int, error) {
	s.connectPending()

	least := math.MaxInt
	lost := false
	for _, in := range s.active {
		n, err := in.Push(src)
		if err != nil {
			lost = true
			continue
		}
		least = min(least, n)
	}
	if lost {
		s.pruneDisconnected()
	}

	if len(s.active) == 0 {
		return 0, ErrNoPatches
	}
	return least, nil
}

// MaxPushable returns the smallest free space across live sinks.
func (s *Splitter) MaxPushable() (int, error) {
	s.connectPending()

	least := math.MaxInt
	lost := false
	for _, in := range s.active {
		n, err := in.Remainder()
		if err != nil {
			lost = true
			continue
		}
		least = min(least, n)
	}
	if lost {
		s.pruneDisconnected()
	}

	if len(s.active) == 0 {
		return 0, ErrNoPatches
	}
	return least, nil
}
