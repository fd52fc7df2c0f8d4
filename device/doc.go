// SPDX-License-Identifier: EPL-2.0

// Package device describes the audio devices an engine drives.
//
// A Format fixes the channel counts, sample type, rate and period of a
// stream for its whole lifetime; there is no negotiation after Open. A
// Backend opens Streams, a Stream invokes a Callback once per period with
// an interleaved byte buffer to fill, and Encode turns normalized float32
// samples into any of the supported SampleTypes.
//
// Backends live in subpackages: null drives the callback from a clock with
// no hardware attached, oto plays through ebitengine/oto and portaudio
// through the PortAudio library.
package device
