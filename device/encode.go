// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audpatch/utils"
)

// Encode writes src into dst as little-endian samples of type t and returns
// the number of samples encoded. It stops early when dst is too small for
// the next sample. Float32 is written unclamped; the integer types clamp to
// [-1, 1] first.
func Encode(dst []byte, src []float32, t SampleType) int {
	size := t.Size()
	if size == 0 {
		return 0
	}
	n := min(len(src), len(dst)/size)

	switch t {
	case Float32:
		for i, v := range src[:n] {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case Int32:
		for i, v := range src[:n] {
			binary.LittleEndian.PutUint32(dst[i*4:], uint32(utils.Float32ToInt32(v)))
		}
	case Int24:
		for i, v := range src[:n] {
			s := utils.Float32ToInt24(v)
			dst[i*3] = byte(s)
			dst[i*3+1] = byte(s >> 8)
			dst[i*3+2] = byte(s >> 16)
		}
	case Int16:
		for i, v := range src[:n] {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(utils.Float32ToInt16(v)))
		}
	case Int8:
		for i, v := range src[:n] {
			dst[i] = byte(utils.Float32ToInt8(v))
		}
	case Uint8:
		for i, v := range src[:n] {
			dst[i] = utils.Float32ToUint8(v)
		}
	}
	return n
}

// Silence fills dst with the encoding of zero for t. Every type but Uint8
// encodes silence as zero bytes.
func Silence(dst []byte, t SampleType) {
	if t == Uint8 {
		for i := range dst {
			dst[i] = 128
		}
		return
	}
	clear(dst)
}
