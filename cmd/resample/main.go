// SPDX-License-Identifier: EPL-2.0

// Command resample converts an audio file to a WAV file with a chosen
// sample rate, channel count and bit depth.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ik5/audpatch"
	"github.com/ik5/audpatch/audio"
	"github.com/ik5/audpatch/formats/wav"
)

func main() {
	rate := flag.Int("rate", 8000, "Output sample rate in Hz; 0 keeps the input rate")
	channels := flag.Int("channels", 1, "Output channels; 0 keeps the input layout")
	bits := flag.Int("bits", 16, "Output bit depth: 8, 16, 24 or 32")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resample [options] <input.{wav|mp3|ogg|aiff}> <output.wav>\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := convert(flag.Arg(0), flag.Arg(1), *rate, *channels, *bits); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Wrote:", flag.Arg(1))
}

func convert(inPath, outPath string, rate, channels, bits int) (err error) {
	src, err := audpatch.Open(inPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close input: %w", cerr))
		}
	}()

	if channels > 0 && channels != src.Channels() {
		src = audio.NewRemixer(src, channels)
	}
	if rate > 0 && rate != src.SampleRate() {
		src = audio.NewResampler(src, rate)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()

	return wav.Encode(out, src, bits)
}
