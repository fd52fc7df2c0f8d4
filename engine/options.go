// SPDX-License-Identifier: EPL-2.0

package engine

import "log/slog"

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	useLatest bool
}

// WithLogger sets the logger for state transitions, device errors and
// pruned connections. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUseLatest makes the mixer drop backlog from inputs that run ahead,
// trading completeness for latency.
func WithUseLatest(useLatest bool) Option {
	return func(o *options) {
		o.useLatest = useLatest
	}
}
