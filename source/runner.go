// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ik5/audpatch/patch"
)

// runner gives a blocking Run loop the Play / Stop / Wait lifecycle.
type runner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func (r *runner) play(ctx context.Context, run func(context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		select {
		case <-r.done:
		default:
			return ErrAlreadyPlaying
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done, r.err = cancel, done, nil

	go func() {
		defer close(done)
		defer cancel()

		err := run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}()
	return nil
}

func (r *runner) stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *runner) wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// pushAll pushes samples into in, waiting poll between attempts while the
// Input is full. It returns early with the pushed count when ctx ends.
func pushAll(ctx context.Context, in *patch.Input, samples []float32, poll time.Duration) (int, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	total := 0
	for total < len(samples) {
		n, err := in.Push(samples[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n > 0 {
			continue
		}

		if timer == nil {
			timer = time.NewTimer(poll)
		} else {
			timer.Reset(poll)
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-timer.C:
		}
	}
	return total, nil
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, timer *time.Timer, d time.Duration) error {
	timer.Reset(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
