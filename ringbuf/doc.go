// SPDX-License-Identifier: EPL-2.0

// Package ringbuf provides a bounded, lock-free single-producer
// single-consumer ring buffer.
//
// Every operation clamps instead of failing: pushing into a full buffer
// copies what fits, popping from an empty one copies nothing, and the
// returned count tells the caller what actually moved. Nothing allocates
// after New or Reset, which makes the buffer usable from a real-time audio
// callback.
//
//	buf := ringbuf.New[float32](8)
//	buf.Push([]float32{1, 2, 3, 4, 5}) // 5
//	out := make([]float32, 3)
//	buf.Pop(out)                       // 3, out == [1 2 3]
//	buf.Remainder()                    // 6
package ringbuf
