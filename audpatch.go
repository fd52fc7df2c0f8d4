// SPDX-License-Identifier: EPL-2.0

package audpatch

import (
	"fmt"
	"os"
	"sync"

	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/formats/aiff"
	"github.com/ik5/audpatch/formats/mp3"
	"github.com/ik5/audpatch/formats/vorbis"
	"github.com/ik5/audpatch/formats/wav"
)

// NewRegistry returns a registry with every bundled decoder.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wav", "wave")
	reg.Register("mp3", mp3.Decoder{}, "mp3")
	reg.Register("vorbis", vorbis.Decoder{}, "ogg", "oga")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aiff")
	return reg
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Open decodes the file at path, picking the decoder by extension. Closing
// the returned Source closes the file.
func Open(path string) (audio.Source, error) {
	return OpenWith(defaultRegistry(), path)
}

// OpenWith is Open using reg.
func OpenWith(reg *audio.Registry, path string) (audio.Source, error) {
	dec, format, err := reg.Lookup(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &fileSource{Source: src, f: f}, nil
}

// fileSource closes the file under a decoded source.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if ferr := s.f.Close(); ferr != nil && err == nil {
		err = fmt.Errorf("close audio file: %w", ferr)
	}
	return err
}
