// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ReadAll reads src until io.EOF and returns every interleaved sample.
// Reads are made in chunks of src.BufSize() whole frames.
func ReadAll(src Source) ([]float32, error) {
	ch := max(src.Channels(), 1)
	chunk := max(src.BufSize(), ch) / ch * ch
	buf := make([]float32, chunk)

	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read samples: %w", err)
		}
		if n == 0 {
			return out, io.ErrNoProgress
		}
	}
}
