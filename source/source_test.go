// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ik5/audpatch/internal/audiotest"
	"github.com/ik5/audpatch/patch"
)

var quiet = WithLogger(slog.New(slog.DiscardHandler))

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// drain pops from out until want samples are collected.
func drain(t *testing.T, out *patch.Output, want int) []float32 {
	t.Helper()

	got := make([]float32, 0, want)
	buf := make([]float32, 64)
	waitFor(t, "samples", func() bool {
		n, err := out.Pop(buf[:min(len(buf), want-len(got))], false)
		if err != nil {
			t.Fatalf("Pop() error = %v", err)
		}
		got = append(got, buf[:n]...)
		return len(got) >= want
	})
	return got
}

func counter() GeneratorFunc {
	var n float32
	return func() float32 {
		v := n
		n++
		return v
	}
}

func TestStream_NoSampleLostOrRepeated(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(100, 1)
	in := patch.NewInput(out)
	defer in.Close()

	s := NewStream(in, counter(), quiet, WithPollInterval(100*time.Microsecond))
	if err := s.Play(t.Context()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	got := drain(t, out, 3000)
	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("sample %d = %v, want %d", i, v, i)
		}
	}

	s.Stop()
	if err := s.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestStream_RepeatsAcrossChannels(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(64, 1)
	in := patch.NewInput(out)
	defer in.Close()

	s := NewStream(in, counter(), quiet, WithChannels(3))
	if err := s.Play(t.Context()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	got := drain(t, out, 30)
	for i, v := range got {
		if want := float32(i / 3); v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestStream_EndsWhenOutputCloses(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(8, 1)
	in := patch.NewInput(out)
	defer in.Close()

	s := NewStream(in, NewSine(440, 8000, 1), quiet)
	if err := s.Play(t.Context()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "full output", func() bool { return out.Remainder() == 0 })

	out.Close()
	if err := s.Wait(); err != nil {
		t.Errorf("Wait() error = %v, want nil after disconnect", err)
	}
}

func TestStream_PlayTwice(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(8, 1)
	in := patch.NewInput(out)
	defer in.Close()

	s := NewStream(in, NewWhiteNoise(1, 1), quiet)
	if err := s.Play(t.Context()); err != nil {
		t.Fatal(err)
	}
	if err := s.Play(t.Context()); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Play() error = %v, want ErrAlreadyPlaying", err)
	}

	s.Stop()
	s.Wait()

	// A finished stream can play again.
	if err := s.Play(t.Context()); err != nil {
		t.Errorf("Play() after Wait error = %v", err)
	}
	s.Stop()
	s.Wait()
}

func TestStream_RunHonoursDeadline(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(8, 1)
	in := patch.NewInput(out)
	defer in.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err := NewStream(in, NewWhiteNoise(1, 1), quiet).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
}

func TestProducers_WithoutInput(t *testing.T) {
	t.Parallel()

	clip, err := NewClip(nil, []float32{1}, quiet)
	if err != nil {
		t.Fatal(err)
	}

	runs := map[string]func(context.Context) error{
		"stream": NewStream(nil, NewWhiteNoise(1, 1), quiet).Run,
		"clip":   clip.Run,
		"player": NewPlayer(nil, audiotest.NewSilentSource(8000, 1, 8), 8000, 1, quiet).Run,
	}
	for name, run := range runs {
		if err := run(t.Context()); !errors.Is(err, ErrNoInput) {
			t.Errorf("%s Run() error = %v, want ErrNoInput", name, err)
		}
	}
}

func TestClip_Loops(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(32, 1)
	in := patch.NewInput(out)
	defer in.Close()

	clip, err := NewClip(in, []float32{1, 2, 3}, quiet, WithLoops(3))
	if err != nil {
		t.Fatal(err)
	}
	if err := clip.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := make([]float32, 16)
	n, _ := out.Pop(got, false)
	want := []float32{1, 2, 3, 1, 2, 3, 1, 2, 3}
	if n != len(want) {
		t.Fatalf("clip pushed %d samples, want %d", n, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	// Running again replays from the start.
	clip.SetLoops(0)
	if clip.Loops() != 1 {
		t.Errorf("Loops() = %d, want 1", clip.Loops())
	}
	clip.Run(t.Context())
	if n, _ := out.Pop(got, false); n != 3 || got[0] != 1 {
		t.Errorf("replay = %v", got[:n])
	}
}

func TestClip_LargerThanInput(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(4, 1)
	in := patch.NewInput(out)
	defer in.Close()

	samples := make([]float32, 10)
	for i := range samples {
		samples[i] = float32(i)
	}
	clip, err := NewClip(in, samples, quiet, WithLoops(2), WithPollInterval(100*time.Microsecond))
	if err != nil {
		t.Fatal(err)
	}
	if clip.Len() != 10 {
		t.Errorf("Len() = %d, want 10", clip.Len())
	}
	if err := clip.Play(t.Context()); err != nil {
		t.Fatal(err)
	}

	got := drain(t, out, 20)
	if err := clip.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	for i, v := range got {
		if want := float32(i % 10); v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestClip_StopWhileBlocked(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(1, 1)
	in := patch.NewInput(out)
	defer in.Close()

	clip, err := NewClip(in, make([]float32, 100), quiet)
	if err != nil {
		t.Fatal(err)
	}
	clip.Play(t.Context())
	waitFor(t, "full output", func() bool { return out.Remainder() == 0 })

	clip.Stop()
	if err := clip.Wait(); err != nil {
		t.Errorf("Wait() error = %v, want nil after Stop", err)
	}
}

func TestClip_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewClip(nil, nil); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("NewClip(empty) error = %v, want ErrEmptyClip", err)
	}

	src := audiotest.NewSilentSource(8000, 1, 4)
	src.Err = io.ErrUnexpectedEOF
	if _, err := LoadClip(nil, src); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("LoadClip() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestLoadClip(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(100, 1)
	in := patch.NewInput(out)
	defer in.Close()

	clip, err := LoadClip(in, audiotest.NewRampSource(8000, 2, 50), quiet)
	if err != nil {
		t.Fatalf("LoadClip() error = %v", err)
	}
	if clip.Len() != 100 {
		t.Errorf("Len() = %d, want 100", clip.Len())
	}
}

func TestClip_EndsWhenOutputCloses(t *testing.T) {
	t.Parallel()

	out := patch.NewOutput(4, 1)
	in := patch.NewInput(out)
	defer in.Close()
	out.Close()

	clip, _ := NewClip(in, make([]float32, 100), quiet, WithLoops(1000))
	if err := clip.Run(t.Context()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}
