// SPDX-License-Identifier: EPL-2.0

package patch

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func constant(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestMixer_SumsInputsWithGain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   float32
		ga, gb float32
	}{
		{name: "unity", a: 0.25, b: 0.5, ga: 1, gb: 1},
		{name: "attenuated", a: 1, b: -1, ga: 0.5, gb: 0.25},
		{name: "muted", a: 0.7, b: 0.3, ga: 0, gb: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMixer()
			inA := m.AddNewInput(64, tt.ga)
			inB := m.AddNewInput(64, tt.gb)
			defer inA.Close()
			defer inB.Close()

			inA.Push(constant(32, tt.a))
			inB.Push(constant(32, tt.b))

			dst := constant(32, 99) // Pop must clear the destination
			n, err := m.Pop(dst, false)
			if err != nil {
				t.Fatalf("Pop() error = %v", err)
			}
			if n != 32 {
				t.Fatalf("Pop() = %d, want 32", n)
			}

			want := tt.a*tt.ga + tt.b*tt.gb
			for i, v := range dst {
				if math.Abs(float64(v-want)) > 1e-6 {
					t.Fatalf("dst[%d] = %v, want %v", i, v, want)
				}
			}
		})
	}
}

func TestMixer_PopReturnsLargestContribution(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	short := m.AddNewInput(64, 1)
	long := m.AddNewInput(64, 1)
	defer short.Close()
	defer long.Close()

	short.Push(constant(10, 1))
	long.Push(constant(40, 1))

	dst := make([]float32, 64)
	n, err := m.Pop(dst, false)
	if err != nil || n != 40 {
		t.Fatalf("Pop() = %d, %v, want 40, nil", n, err)
	}
	if dst[5] != 2 || dst[20] != 1 || dst[50] != 0 {
		t.Errorf("unexpected mix: dst[5]=%v dst[20]=%v dst[50]=%v", dst[5], dst[20], dst[50])
	}
}

func TestMixer_DropsStaleInput(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	leaving := m.AddNewInput(128, 1)
	staying := m.AddNewInput(128, 0.5)
	defer staying.Close()

	leaving.Push(constant(100, 1))
	staying.Push(constant(100, 1))

	if n, err := m.MaxPoppable(); err != nil || n != 100 {
		t.Fatalf("MaxPoppable() = %d, %v, want 100, nil", n, err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	leaving.Close()

	dst := make([]float32, 100)
	n, err := m.Pop(dst, false)
	if err != nil || n != 100 {
		t.Fatalf("Pop() = %d, %v, want 100, nil", n, err)
	}
	for i, v := range dst {
		if v != 0.5 {
			t.Fatalf("dst[%d] = %v, want 0.5 from the surviving input only", i, v)
		}
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after prune", m.Len())
	}
	if _, err := leaving.Push([]float32{1}); !errors.Is(err, ErrDisconnected) {
		t.Errorf("pruned input Push() error = %v, want ErrDisconnected", err)
	}
}

func TestMixer_NoPatches(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	if _, err := m.MaxPoppable(); !errors.Is(err, ErrNoPatches) {
		t.Errorf("MaxPoppable() error = %v, want ErrNoPatches", err)
	}
	if _, err := m.Pop(make([]float32, 4), false); !errors.Is(err, ErrNoPatches) {
		t.Errorf("Pop() error = %v, want ErrNoPatches", err)
	}

	in := m.AddNewInput(8, 1)
	in.Close()
	if _, err := m.Pop(make([]float32, 4), false); !errors.Is(err, ErrNoPatches) {
		t.Errorf("Pop() with only a stale input error = %v, want ErrNoPatches", err)
	}
}

func TestMixer_MaxPoppable(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	a := m.AddNewInput(64, 1)
	b := m.AddNewInput(64, 1)
	defer a.Close()
	defer b.Close()

	a.Push(constant(30, 1))
	b.Push(constant(12, 1))

	if n, err := m.MaxPoppable(); err != nil || n != 12 {
		t.Errorf("MaxPoppable() = %d, %v, want 12, nil", n, err)
	}
}

func TestMixer_MaxPoppableSkipsEmptyStaleInput(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	gone := m.AddNewInput(64, 1)
	live := m.AddNewInput(64, 1)
	defer live.Close()

	live.Push(constant(20, 1))
	gone.Close()

	if n, err := m.MaxPoppable(); err != nil || n != 20 {
		t.Errorf("MaxPoppable() = %d, %v, want 20, nil", n, err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMixer_UseLatest(t *testing.T) {
	t.Parallel()

	m := NewMixer()
	in := m.AddNewInput(16, 1)
	defer in.Close()

	in.Push([]float32{1, 2, 3, 4, 5, 6, 7, 8})

	dst := make([]float32, 3)
	n, err := m.Pop(dst, true)
	if err != nil || n != 3 {
		t.Fatalf("Pop() = %d, %v", n, err)
	}
	if dst[0] != 6 || dst[2] != 8 {
		t.Errorf("Pop(useLatest) = %v, want [6 7 8]", dst)
	}
}

func TestMixer_ConcurrentRegistration(t *testing.T) {
	t.Parallel()

	const producers = 16
	m := NewMixer()

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := m.AddNewInput(256, 1.0/producers)
			buf := constant(64, 1)
			pushed := 0
			for pushed < 512 {
				n, err := in.Push(buf)
				if err != nil {
					return
				}
				pushed += n
			}
			in.Close()
		}()
	}

	dst := make([]float32, 128)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			// Drain whatever the producers left behind.
			for {
				if _, err := m.Pop(dst, false); errors.Is(err, ErrNoPatches) {
					return
				}
			}
		default:
			_, _ = m.Pop(dst, false)
		}
	}
}

func BenchmarkMixer_Pop(b *testing.B) {
	m := NewMixer()
	inputs := make([]*Input, 8)
	for i := range inputs {
		inputs[i] = m.AddNewInput(1024, 0.125)
	}
	src := constant(256, 0.5)
	dst := make([]float32, 256)

	b.ReportAllocs()
	for b.Loop() {
		for _, in := range inputs {
			in.Push(src)
		}
		m.Pop(dst, false)
	}
}
