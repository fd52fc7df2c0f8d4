// SPDX-License-Identifier: EPL-2.0

package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/ik5/audpatch/formats/wav"
	"github.com/ik5/audpatch/patch"
)

// DefaultPollInterval is how often an idle Recorder checks its tap.
const DefaultPollInterval = 5 * time.Millisecond

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithPollInterval sets how long the Recorder sleeps when the tap is empty.
func WithPollInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.poll = d
		}
	}
}

// Recorder drains a tap Output into a WAV Writer.
type Recorder struct {
	tap      *patch.Output
	w        *wav.Writer
	channels int
	logger   *slog.Logger
	poll     time.Duration
	buf      []float32
	samples  atomic.Int64
}

// New returns a Recorder moving audio of channels channels from tap to w.
func New(tap *patch.Output, w *wav.Writer, channels int, opts ...Option) *Recorder {
	channels = max(channels, 1)
	r := &Recorder{
		tap:      tap,
		w:        w,
		channels: channels,
		poll:     DefaultPollInterval,
		buf:      make([]float32, max(tap.Capacity(), channels)/channels*channels),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Frames is the number of whole frames written so far.
func (r *Recorder) Frames() int64 { return r.samples.Load() / int64(r.channels) }

// drain writes everything currently buffered in the tap and reports how
// many samples it moved.
func (r *Recorder) drain() (int, error) {
	total := 0
	for {
		// Whole frames only: a partial frame waits for the rest.
		want := min(len(r.buf), r.tap.Len()/r.channels*r.channels)
		if want == 0 {
			if r.tap.IsStale() {
				return total, patch.ErrStale
			}
			return total, nil
		}
		n, err := r.tap.Pop(r.buf[:want], false)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		if err := r.w.Write(r.buf[:n]); err != nil {
			return total, err
		}
		total += n
		r.samples.Add(int64(n))
	}
}

// Run records until ctx ends or the tap loses its producer, then writes
// what is left in the tap. Both ways of ending return nil. The Writer is
// not closed.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	r.logger.Debug("recording", "tap", r.tap.ID(), "channels", r.channels)
	defer func() {
		r.logger.Debug("recording stopped", "tap", r.tap.ID(), "frames", r.Frames())
	}()

	for {
		_, err := r.drain()
		if errors.Is(err, patch.ErrStale) {
			return nil
		}
		if err != nil {
			r.logger.Error("cannot record", "error", err)
			return err
		}

		select {
		case <-ctx.Done():
			if _, err := r.drain(); err != nil && !errors.Is(err, patch.ErrStale) {
				return err
			}
			return nil
		case <-ticker.C:
		}
	}
}

// ToFile records tap into a new WAV file at path until ctx ends.
func ToFile(ctx context.Context, path string, tap *patch.Output, sampleRate, channels, bitDepth int, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close recording: %w", cerr)
		}
	}()

	w, err := wav.NewWriter(f, sampleRate, channels, bitDepth)
	if err != nil {
		return err
	}

	runErr := New(tap, w, channels, opts...).Run(ctx)
	if cerr := w.Close(); cerr != nil {
		return errors.Join(runErr, cerr)
	}
	return runErr
}
