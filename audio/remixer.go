// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Remixer converts a Source to a different channel count.
//
// Downmixing averages every source channel i into output channel i%M.
// Upmixing copies source channel c%N into output channel c, so mono is
// duplicated to every output and stereo is repeated across pairs.
type Remixer struct {
	src      Source
	channels int
	tmp      []float32
}

// NewRemixer returns a Source producing channels interleaved channels.
func NewRemixer(src Source, channels int) *Remixer {
	return &Remixer{
		src:      src,
		channels: max(channels, 1),
	}
}

// NewMonoMixer downmixes src to a single channel.
func NewMonoMixer(src Source) *Remixer {
	return NewRemixer(src, 1)
}

func (m *Remixer) SampleRate() int { return m.src.SampleRate() }
func (m *Remixer) Channels() int   { return m.channels }
func (m *Remixer) BufSize() int    { return m.src.BufSize() }

func (m *Remixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("close remixed source: %w", err)
	}
	return nil
}

func (m *Remixer) ReadSamples(dst []float32) (int, error) {
	in, out := m.src.Channels(), m.channels
	if len(dst)%out != 0 {
		return 0, ErrInvalidDstSize
	}
	if in == out {
		return m.src.ReadSamples(dst)
	}
	if len(dst) == 0 {
		return 0, nil
	}

	needed := len(dst) / out * in
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, needed)
	}
	tmp := m.tmp[:needed]

	n, err := m.src.ReadSamples(tmp)
	frames := n / in
	if frames == 0 {
		return 0, err
	}

	if in > out {
		downmix(dst[:frames*out], tmp[:frames*in], in, out)
	} else {
		upmix(dst[:frames*out], tmp[:frames*in], in, out)
	}
	return frames * out, err
}

func downmix(dst, src []float32, in, out int) {
	if out == 1 && in == 2 {
		for f := range len(dst) {
			dst[f] = (src[2*f] + src[2*f+1]) * 0.5
		}
		return
	}

	clear(dst)
	frames := len(dst) / out
	for f := range frames {
		for c := range in {
			dst[f*out+c%out] += src[f*in+c]
		}
	}
	// Output channel c receives ceil((in-c)/out) source channels.
	for c := range out {
		scale := 1 / float32((in-c+out-1)/out)
		for f := range frames {
			dst[f*out+c] *= scale
		}
	}
}

func upmix(dst, src []float32, in, out int) {
	frames := len(dst) / out
	for f := range frames {
		for c := range out {
			dst[f*out+c] = src[f*in+c%in]
		}
	}
}
