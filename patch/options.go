// SPDX-License-Identifier: EPL-2.0

package patch

import "log/slog"

// Option configures a Mixer, Splitter or Node.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report pruned connections.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
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
	return o
}
