// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ik5/audpatch/device"
	"github.com/ik5/audpatch/device/null"
	"github.com/ik5/audpatch/device/oto"
	"github.com/ik5/audpatch/device/portaudio"
)

var errUsage = errors.New("usage")

// loadFormat starts from the default format and applies the JSON file at
// path, when given. Fields missing from the file keep their defaults.
func loadFormat(path string) (device.Format, error) {
	format := device.DefaultFormat()
	if path == "" {
		return format, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return format, fmt.Errorf("read format: %w", err)
	}
	if err := json.Unmarshal(data, &format); err != nil {
		return format, fmt.Errorf("parse format %s: %w", path, err)
	}
	if err := format.Validate(); err != nil {
		return format, fmt.Errorf("format %s: %w", path, err)
	}
	return format, nil
}

func newBackend(name string) (device.Backend, error) {
	switch strings.ToLower(name) {
	case "null", "":
		return null.New(nil), nil
	case "oto":
		return oto.New(), nil
	case "portaudio", "pa":
		return portaudio.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown device %q (null, oto, portaudio)", errUsage, name)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %w", errUsage, err)
	}
	return level, nil
}
