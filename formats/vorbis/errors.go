// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var ErrInvalidStream = errors.New("not a valid ogg vorbis stream")
