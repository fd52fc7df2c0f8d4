// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var ErrInvalidStream = errors.New("not a valid mp3 stream")
