// SPDX-License-Identifier: EPL-2.0

// Command patchbay plays generated noise, a tone or an audio file through
// the engine, optionally recording what the device receives.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audpatch/engine"
	"github.com/ik5/audpatch/record"
)

type config struct {
	device     string
	mode       string
	file       string
	formatPath string
	recordPath string
	bitDepth   int
	frequency  float64
	gain       float64
	duration   time.Duration
	status     time.Duration
	logLevel   string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.device, "device", "null", "Audio backend: null, oto or portaudio")
	flag.StringVar(&cfg.mode, "mode", "pink", "What to play: noise, pink, sine or file")
	flag.StringVar(&cfg.file, "file", "", "Audio file for -mode file (wav, mp3, ogg, aiff)")
	flag.StringVar(&cfg.formatPath, "format", "", "JSON file with the device format")
	flag.StringVar(&cfg.recordPath, "record", "", "Write what the device plays to this WAV file")
	flag.IntVar(&cfg.bitDepth, "bits", 16, "Bit depth of the recording")
	flag.Float64Var(&cfg.frequency, "freq", 440, "Frequency for -mode sine in Hz")
	flag.Float64Var(&cfg.gain, "gain", 0.2, "Gain applied to the producer")
	flag.DurationVar(&cfg.duration, "duration", 5*time.Second, "How long to play; 0 plays until interrupted")
	flag.DurationVar(&cfg.status, "status", time.Second, "Interval between status logs; 0 disables them")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: patchbay [options]\n\nPlays a producer through the audio engine.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  patchbay -device oto -mode sine -freq 220\n")
		fmt.Fprintf(os.Stderr, "  patchbay -device portaudio -mode file -file song.mp3 -record out.wav\n")
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	level, err := parseLevel(cfg.logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	format, err := loadFormat(cfg.formatPath)
	if err != nil {
		return err
	}
	backend, err := newBackend(cfg.device)
	if err != nil {
		return err
	}

	eng, err := engine.New(format, backend, engine.WithLogger(logger))
	if err != nil {
		return err
	}

	ch := format.OutputChannels
	in := eng.ConnectNewInput(4 * format.FramesPerBuffer * ch)
	defer in.Close()
	in.SetGain(float32(cfg.gain))

	produce, closeProducer, err := newProducer(cfg, in, format.SampleRate, ch, logger)
	if err != nil {
		return err
	}
	defer closeProducer()

	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	if err := eng.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := produce(ctx)
		if err == nil {
			// The producer ran out; let the device play what is buffered.
			drained(ctx, eng)
			cancel()
		}
		return err
	})

	if cfg.recordPath != "" {
		tap := eng.OutputTap(format.SampleRate * ch)
		defer tap.Close()
		g.Go(func() error {
			return record.ToFile(ctx, cfg.recordPath, tap, format.SampleRate, ch, cfg.bitDepth,
				record.WithLogger(logger))
		})
	}

	if cfg.status > 0 {
		g.Go(func() error {
			reportStatus(ctx, eng, logger, cfg.status)
			return nil
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return errors.Join(err, eng.Shutdown())
}

func drained(ctx context.Context, eng *engine.Engine) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for eng.Info().Buffered > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func reportStatus(ctx context.Context, eng *engine.Engine, logger *slog.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info := eng.Info()
			logger.Info("engine status",
				"state", info.State,
				"time", info.Time,
				"cpu_load", fmt.Sprintf("%.3f", info.CPULoad),
				"buffered", info.Buffered,
				"latency", info.Latency(),
				"underruns", info.Underruns,
				"inputs", info.Inputs,
			)
		}
	}
}
