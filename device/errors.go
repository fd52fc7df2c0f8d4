// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrInvalidFormat wraps every Format validation failure.
	ErrInvalidFormat = errors.New("invalid audio format")
	// ErrUnsupportedSampleType is returned by backends that cannot produce
	// the requested sample representation.
	ErrUnsupportedSampleType = errors.New("unsupported sample type")
	// ErrStreamClosed is returned when operating on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
