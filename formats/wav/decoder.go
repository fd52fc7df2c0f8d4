// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/internal/pcm"
)

// formatPCM is the WAVE_FORMAT_PCM format tag.
const formatPCM = 1

func supportedDepth(depth int) bool {
	switch depth {
	case 8, 16, 24, 32:
		return true
	default:
		return false
	}
}

type Decoder struct{}

// Decode reads integer PCM WAV of 8, 16, 24 or 32 bits with any channel
// count. Inputs that cannot seek are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcm.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}
	depth := int(dec.BitDepth)
	if !supportedDepth(depth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	// 8-bit WAV is offset binary; wider depths are two's complement.
	return pcm.NewSource(dec, dec.Format(), depth, depth == 8), nil
}
