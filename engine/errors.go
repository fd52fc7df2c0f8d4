// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrAlreadyStarted is returned by Start unless the engine is stopped.
	ErrAlreadyStarted = errors.New("engine already started")
	// ErrInvalidLatency is returned when a connection asks for a
	// non-positive latency.
	ErrInvalidLatency = errors.New("latency must be positive")
	// ErrNoBackend is returned by New without a device backend.
	ErrNoBackend = errors.New("no device backend")
)
