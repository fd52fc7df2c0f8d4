// SPDX-License-Identifier: EPL-2.0

package source

import (
	"math"
	"math/rand/v2"
)

// Generator produces one mono sample per call.
type Generator interface {
	Next() float32
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() float32

func (f GeneratorFunc) Next() float32 { return f() }

// Sine is a phase-continuous sine oscillator.
type Sine struct {
	amplitude float32
	phase     float64
	step      float64
}

// NewSine returns an oscillator at frequency Hz for sampleRate with the
// given peak amplitude.
func NewSine(frequency float64, sampleRate int, amplitude float32) *Sine {
	s := &Sine{amplitude: amplitude}
	s.SetFrequency(frequency, sampleRate)
	return s
}

// SetFrequency retunes the oscillator without a phase jump.
func (s *Sine) SetFrequency(frequency float64, sampleRate int) {
	if sampleRate <= 0 {
		s.step = 0
		return
	}
	s.step = 2 * math.Pi * frequency / float64(sampleRate)
}

func (s *Sine) Next() float32 {
	v := s.amplitude * float32(math.Sin(s.phase))
	s.phase += s.step
	if s.phase >= 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	return v
}

// WhiteNoise yields uniform samples in [-amplitude, amplitude).
type WhiteNoise struct {
	rng       *rand.Rand
	amplitude float32
}

// NewWhiteNoise returns a white noise generator seeded with seed.
func NewWhiteNoise(seed uint64, amplitude float32) *WhiteNoise {
	return &WhiteNoise{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		amplitude: amplitude,
	}
}

func (w *WhiteNoise) Next() float32 {
	return w.amplitude * (2*w.rng.Float32() - 1)
}

const (
	pinkMaxRows    = 30
	pinkRandomBits = 24
	pinkShift      = 64 - pinkRandomBits
)

// PinkNoise is a Voss-McCartney pink noise generator.
//
// Each of rows random values is refreshed at half the rate of the previous
// one, picked by the trailing zeros of a running index, and a fresh white
// value is added on every sample. Output lies in [-1, 1).
type PinkNoise struct {
	rng    *rand.Rand
	rows   [pinkMaxRows]int64
	sum    int64
	index  int
	mask   int
	scalar float32
}

// NewPinkNoise returns a generator with rows octaves, clamped to [1, 30].
func NewPinkNoise(rows int, seed uint64) *PinkNoise {
	rows = min(max(rows, 1), pinkMaxRows)
	pmax := int64(rows+1) * (1 << (pinkRandomBits - 1))
	return &PinkNoise{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		mask:   1<<rows - 1,
		scalar: 1 / float32(pmax),
	}
}

// random is a signed value of pinkRandomBits bits.
func (p *PinkNoise) random() int64 {
	return int64(p.rng.Uint64()) >> pinkShift
}

func (p *PinkNoise) Next() float32 {
	p.index = (p.index + 1) & p.mask
	if p.index != 0 {
		zeros := 0
		for n := p.index; n&1 == 0; n >>= 1 {
			zeros++
		}
		v := p.random()
		p.sum += v - p.rows[zeros]
		p.rows[zeros] = v
	}
	return p.scalar * float32(p.sum+p.random())
}
