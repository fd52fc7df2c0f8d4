// SPDX-License-Identifier: EPL-2.0

package source

import "errors"

var (
	ErrAlreadyPlaying = errors.New("source is already playing")
	ErrNoInput        = errors.New("source has no input")
	ErrEmptyClip      = errors.New("clip has no samples")
)
