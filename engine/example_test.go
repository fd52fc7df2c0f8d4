// SPDX-License-Identifier: EPL-2.0

package engine_test

import (
	"fmt"
	"math"
	"time"

	"github.com/ik5/audpatch/device"
	"github.com/ik5/audpatch/device/null"
	"github.com/ik5/audpatch/engine"
)

// Example plays a 440 Hz tone for half a second on a device with no
// hardware behind it.
func Example() {
	format := device.DefaultFormat()
	eng, err := engine.New(format, null.New(nil))
	if err != nil {
		fmt.Println(err)
		return
	}

	in := eng.ConnectNewInput(4096)
	defer in.Close()

	if err := eng.Start(); err != nil {
		fmt.Println(err)
		return
	}
	defer eng.Shutdown()

	done := time.After(500 * time.Millisecond)
	phase := 0.0
	step := 2 * math.Pi * 440 / float64(eng.SampleRate())
	for {
		select {
		case <-done:
			fmt.Println("state:", eng.Info().State)
			return
		default:
		}
		v := float32(0.2 * math.Sin(phase))
		if n, _ := in.PushStereo(v, v); n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		phase += step
	}
}
