// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audpatch/device"
	"github.com/ik5/audpatch/patch"
	"github.com/ik5/audpatch/ringbuf"
)

// minPeriods is the minimum size of the device-facing buffer, in device
// periods.
const minPeriods = 1024

// Engine bridges producers to an audio device.
//
// Producers push into Inputs returned by ConnectNewInput. A pump goroutine
// mixes them into the device-facing buffer and copies the mix to every
// OutputTap, and the device callback drains that buffer once per period.
type Engine struct {
	format    device.Format
	backend   device.Backend
	logger    *slog.Logger
	useLatest bool

	mixer *patch.Mixer
	taps  *patch.Splitter

	// mu serializes Start and Shutdown.
	mu     sync.Mutex
	state  atomic.Int32
	stream device.Stream

	output    *ringbuf.Buffer[float32]
	highWater int
	frame     []float32 // callback scratch
	block     []float32 // pump scratch

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	underruns atomic.Uint64
}

// New returns a stopped Engine that will run format on backend.
func New(format device.Format, backend device.Backend, opts ...Option) (*Engine, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Engine{
		format:    format,
		backend:   backend,
		logger:    o.logger,
		useLatest: o.useLatest,
		mixer:     patch.NewMixer(patch.WithLogger(o.logger)),
		taps:      patch.NewSplitter(patch.WithLogger(o.logger)),
		wake:      make(chan struct{}, 1),
	}, nil
}

func (e *Engine) getState() state { return state(e.state.Load()) }

func (e *Engine) setState(s state) { e.state.Store(int32(s)) }

// bufferCapacity is the larger of one second of audio and minPeriods device
// periods, rounded up to whole periods.
func bufferCapacity(f device.Format) int {
	period := f.FramesPerBuffer * f.OutputChannels
	want := max(f.SampleRate*f.OutputChannels, minPeriods*period)
	return (want + period - 1) / period * period
}

// Start opens the device and begins playback. On failure everything opened
// is released and the engine stays stopped.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CompareAndSwap(int32(stateStopped), int32(stateStarting)) {
		return ErrAlreadyStarted
	}

	ch := e.format.OutputChannels
	capacity := bufferCapacity(e.format)
	e.highWater = capacity
	if e.format.BufferSize > 0 {
		e.highWater = min(capacity, e.format.BufferSize*ch)
	}
	e.highWater -= e.highWater % ch

	e.output = ringbuf.New[float32](capacity)
	e.frame = make([]float32, e.format.FramesPerBuffer*ch)
	e.block = make([]float32, e.highWater)
	e.underruns.Store(0)
	select {
	case <-e.wake:
	default:
	}

	stream, err := e.backend.Open(e.format, e.writeToDevice)
	if err != nil {
		e.setState(stateStopped)
		e.logger.Error("cannot open audio device", "error", err)
		return fmt.Errorf("open device: %w", err)
	}

	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	go e.pump(e.quit, e.done)

	if err := stream.Start(); err != nil {
		close(e.quit)
		<-e.done
		err = fmt.Errorf("start device: %w", err)
		if cerr := stream.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close device: %w", cerr))
		}
		e.setState(stateStopped)
		e.logger.Error("cannot start audio device", "error", err)
		return err
	}

	e.stream = stream
	e.setState(stateRunning)
	e.signal()

	e.logger.Info("engine started",
		"sample_rate", e.format.SampleRate,
		"channels", ch,
		"sample_type", e.format.SampleType,
		"frames_per_buffer", e.format.FramesPerBuffer,
		"capacity", capacity,
		"high_water", e.highWater,
	)
	return nil
}

// Shutdown stops and closes the device, then joins the pump goroutine. No
// callback runs once it returns. Calling it on a stopped engine is a no-op.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.getState() == stateStopped {
		return nil
	}
	e.setState(stateStopping)

	var errs []error
	if e.stream != nil {
		if err := e.stream.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop device: %w", err))
		}
		if err := e.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close device: %w", err))
		}
		e.stream = nil
	}

	close(e.quit)
	<-e.done

	e.setState(stateStopped)

	err := errors.Join(errs...)
	if err != nil {
		e.logger.Error("engine stopped with errors", "error", err)
		return err
	}
	e.logger.Info("engine stopped", "underruns", e.underruns.Load())
	return nil
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// writeToDevice is the device callback. It must not allocate, lock or
// block: it only reads the output buffer and raises the pump signal.
// Captured input frames are ignored.
func (e *Engine) writeToDevice(out, _ []byte, frames int) {
	t := e.format.SampleType
	size := t.Size()
	want := frames * e.format.OutputChannels

	written := 0
	for written < want {
		chunk := min(want-written, len(e.frame))
		got := e.output.Pop(e.frame[:chunk])
		device.Encode(out[written*size:], e.frame[:got], t)
		written += got
		if got < chunk {
			break
		}
	}
	if written < want {
		device.Silence(out[written*size:want*size], t)
		e.underruns.Add(1)
	}

	e.signal()
}

func (e *Engine) pump(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			return
		case <-e.wake:
			e.pumpOnce()
		}
	}
}

// pumpOnce moves as much mixed audio as every input can supply into the
// output buffer, up to the high-water mark, in whole frames.
func (e *Engine) pumpOnce() int {
	avail, err := e.mixer.MaxPoppable()
	if err != nil || avail <= 0 {
		return 0
	}

	ch := e.format.OutputChannels
	n := min(avail, e.output.Remainder(), e.highWater-e.output.Len(), len(e.block))
	n -= n % ch
	if n <= 0 {
		return 0
	}

	got, err := e.mixer.Pop(e.block[:n], e.useLatest)
	if err != nil || got <= 0 {
		return 0
	}
	got -= got % ch

	e.output.Push(e.block[:got])
	_, _ = e.taps.Push(e.block[:got])
	return got
}

// ConnectNewInput registers a producer. The returned Input buffers
// 2*maxLatency samples; a non-positive latency falls back to one device
// period.
func (e *Engine) ConnectNewInput(maxLatency int) *patch.Input {
	if maxLatency <= 0 {
		maxLatency = e.format.FramesPerBuffer * e.format.OutputChannels
	}
	return e.mixer.AddNewInput(maxLatency, 1)
}

// ConnectInput registers a named producer with gain 1.
func (e *Engine) ConnectInput(name string, maxLatency int) (*patch.Input, error) {
	if maxLatency <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLatency, maxLatency)
	}
	return e.mixer.AddNamedInput(name, maxLatency, 1), nil
}

// OutputTap returns an Output receiving a copy of everything sent to the
// device. The caller holds the only strong reference; the tap is dropped
// once it is closed or collected. A non-positive latency falls back to one
// device period.
//
// A tap that fills up loses audio rather than slowing the device. Its
// capacity is kept to whole frames so that a reader popping whole frames
// never sees the channels shift.
func (e *Engine) OutputTap(maxLatency int) *patch.Output {
	if maxLatency <= 0 {
		maxLatency = e.format.FramesPerBuffer * e.format.OutputChannels
	}
	return e.taps.AddNewPatch(e.wholeFrames(maxLatency), 1)
}

// NamedTap is OutputTap with a label and latency validation.
func (e *Engine) NamedTap(name string, maxLatency int) (*patch.Output, error) {
	if maxLatency <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLatency, maxLatency)
	}
	return e.taps.AddNamedPatch(name, e.wholeFrames(maxLatency), 1), nil
}

func (e *Engine) wholeFrames(samples int) int {
	ch := e.format.OutputChannels
	return (samples + ch - 1) / ch * ch
}

// IsActive reports whether the device is running.
func (e *Engine) IsActive() bool { return e.getState() == stateRunning }

// IsStopped reports whether the engine is fully stopped.
func (e *Engine) IsStopped() bool { return e.getState() == stateStopped }

// SampleRate of the device stream in Hz.
func (e *Engine) SampleRate() int { return e.format.SampleRate }

// InputChannels captured from the device.
func (e *Engine) InputChannels() int { return e.format.InputChannels }

// OutputChannels written to the device.
func (e *Engine) OutputChannels() int { return e.format.OutputChannels }

// Format returns the stream format.
func (e *Engine) Format() device.Format { return e.format }

// Sleep blocks the calling goroutine for d. It is meant for harnesses that
// let the engine play for a while.
func (e *Engine) Sleep(d time.Duration) { time.Sleep(d) }

// Info returns a snapshot of the engine and its device.
func (e *Engine) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()

	info := Info{
		Format:    e.format,
		State:     e.getState().String(),
		Underruns: e.underruns.Load(),
		Inputs:    e.mixer.Len(),
		Taps:      e.taps.Len(),
	}
	if e.output != nil {
		info.Buffered = e.output.Len()
		info.Capacity = e.output.Capacity()
	}
	if e.stream != nil {
		info.Time = e.stream.Time()
		info.CPULoad = e.stream.CPULoad()
	}
	return info
}
