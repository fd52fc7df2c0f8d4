// SPDX-License-Identifier: EPL-2.0

package source

import (
	"log/slog"
	"time"
)

// DefaultPollInterval is how long a producer waits when its Input is full.
const DefaultPollInterval = time.Millisecond

// Option configures a Stream, Clip or Player.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	poll     time.Duration
	channels int
	loops    int
}

// WithLogger sets the logger for start, stop and failure events. Defaults
// to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPollInterval sets the back-off used while the Input has no room.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.poll = d
	}
}

// WithChannels makes a Stream repeat each generated sample on n channels.
func WithChannels(n int) Option {
	return func(o *options) {
		o.channels = n
	}
}

// WithLoops sets how many times a Clip plays. Values below 1 mean once.
func WithLoops(n int) Option {
	return func(o *options) {
		o.loops = n
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.poll <= 0 {
		o.poll = DefaultPollInterval
	}
	o.channels = max(o.channels, 1)
	o.loops = max(o.loops, 1)
	return o
}
