// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Source is a decoded PCM stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1] and
	// returns the number of float32 values written, always whole frames.
	// When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// BufSize is the read size, in samples, the source works best with.
	BufSize() int
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (Source, error)

// Decode calls f.
func (f DecoderFunc) Decode(r io.Reader) (Source, error) { return f(r) }

// Registry maps format keys (e.g., "wav", "mp3", "vorbis") and file
// extensions to decoders. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	codecs     map[string]Decoder
	extensions map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:     make(map[string]Decoder),
		extensions: make(map[string]string),
	}
}

// Register adds d under format, replacing any previous decoder, and maps
// each extension (with or without the leading dot) to format.
func (r *Registry) Register(format string, d Decoder, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[format] = d
	for _, ext := range extensions {
		r.extensions[normalizeExt(ext)] = format
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Lookup finds the decoder for a file name by its extension and returns
// it with the format key it was registered under.
func (r *Registry) Lookup(name string) (Decoder, string, error) {
	ext := normalizeExt(filepath.Ext(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	format, ok := r.extensions[ext]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return r.codecs[format], format, nil
}

// Decode decodes rd with the decoder registered under format.
func (r *Registry) Decode(format string, rd io.Reader) (Source, error) {
	d, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	src, err := d.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return src, nil
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
