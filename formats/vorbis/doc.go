// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
//	f, _ := os.Open("ambience.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//
// Samples are interleaved float32 at the stream's own rate and channel
// count. The decoder hands out whole frames only, so blocks can go straight
// into a patch.Input.
package vorbis
