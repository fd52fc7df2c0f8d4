// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ik5/audpatch"
	"github.com/ik5/audpatch/patch"
	"github.com/ik5/audpatch/source"
)

// pinkRows gives pink noise a flat spectrum down to a few Hz at 48 kHz.
const pinkRows = 16

// newProducer returns the Run function for the selected mode and a
// function releasing what it opened.
func newProducer(cfg config, in *patch.Input, sampleRate, channels int, logger *slog.Logger) (func(context.Context) error, func(), error) {
	opts := []source.Option{source.WithLogger(logger), source.WithChannels(channels)}
	seed := uint64(time.Now().UnixNano())
	noop := func() {}

	switch strings.ToLower(cfg.mode) {
	case "noise", "white":
		return source.NewStream(in, source.NewWhiteNoise(seed, 1), opts...).Run, noop, nil
	case "pink":
		return source.NewStream(in, source.NewPinkNoise(pinkRows, seed), opts...).Run, noop, nil
	case "sine":
		if cfg.frequency <= 0 || cfg.frequency >= float64(sampleRate)/2 {
			return nil, nil, fmt.Errorf("%w: frequency %g Hz outside (0, %d)", errUsage, cfg.frequency, sampleRate/2)
		}
		return source.NewStream(in, source.NewSine(cfg.frequency, sampleRate, 1), opts...).Run, noop, nil
	case "file":
		if cfg.file == "" {
			return nil, nil, fmt.Errorf("%w: -mode file needs -file", errUsage)
		}
		src, err := audpatch.Open(cfg.file)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("playing file",
			"path", cfg.file,
			"sample_rate", src.SampleRate(),
			"channels", src.Channels(),
		)
		player := source.NewPlayer(in, src, sampleRate, channels, source.WithLogger(logger))
		release := func() {
			if err := player.Close(); err != nil {
				logger.Warn("cannot close file", "path", cfg.file, "error", err)
			}
		}
		return player.Run, release, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown mode %q (noise, pink, sine, file)", errUsage, cfg.mode)
	}
}
