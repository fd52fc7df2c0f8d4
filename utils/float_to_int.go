// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits x to the normalized sample range [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 converts a normalized sample to signed 16-bit PCM.
// Positive full scale maps to 32767 so the result never wraps.
func Float32ToInt16(x float32) int16 {
	return int16(Clamp(x) * math.MaxInt16)
}

// Float32ToInt8 converts a normalized sample to signed 8-bit PCM.
func Float32ToInt8(x float32) int8 {
	return int8(Clamp(x) * math.MaxInt8)
}

// Float32ToUint8 converts a normalized sample to offset-binary 8-bit PCM,
// where 128 is silence.
func Float32ToUint8(x float32) uint8 {
	return uint8(int16(Float32ToInt8(x)) + 128)
}

// Float32ToInt24 converts a normalized sample to signed 24-bit PCM held in
// the low three bytes of an int32.
func Float32ToInt24(x float32) int32 {
	const maxInt24 = 1<<23 - 1
	return int32(float64(Clamp(x)) * maxInt24)
}

// Float32ToInt32 converts a normalized sample to signed 32-bit PCM.
// The math is done in float64: float32 cannot represent MaxInt32.
func Float32ToInt32(x float32) int32 {
	return int32(float64(Clamp(x)) * math.MaxInt32)
}

// Int16ToFloat32 converts signed 16-bit PCM to a normalized sample.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}
