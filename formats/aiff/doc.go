// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
//	f, _ := os.Open("loop.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//
// Uncompressed 8, 16, 24 and 32-bit files with any channel count are
// supported. Samples are normalized to [-1, 1) and interleaved. Inputs that
// cannot seek are read into memory first.
package aiff
