// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package capture defines the camera-side contract the interval scheduler
// drives, plus a simulated device and a storage guard.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrLowStorage is returned when the media volume is too full to keep capturing.
	// The scheduler stops the campaign when it sees this error.
	ErrLowStorage = errors.New("capture: storage below minimum free space")

	// ErrDeviceBusy is returned when the camera cannot accept the request right now.
	ErrDeviceBusy = errors.New("capture: device busy")
)

// Device is the hardware abstraction used by the interval scheduler.
type Device interface {
	// CanTakeStill reports whether a still can be captured right now
	// (not mid-burst, not blocked by the current recording mode).
	CanTakeStill() bool
	TakeStill(ctx context.Context) error

	// IsRecording returns the recording flag and whether it is known.
	IsRecording() (recording bool, known bool)
	StartRecording(ctx context.Context) error
	// StopRecording may block on hardware; callers run it off their timer path.
	StopRecording(ctx context.Context) error

	// Is4K reports whether the configured recording resolution is 4K.
	Is4K() bool
}

// ImageFormat selects the still encoding, which bounds the burst rate.
type ImageFormat string

const (
	FormatJPEG    ImageFormat = "jpeg"
	FormatRAW     ImageFormat = "raw"
	FormatJPEGRAW ImageFormat = "jpeg+raw"
)

// ParseImageFormat normalises s. The empty string maps to JPEG.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch ImageFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJPEG:
		return FormatJPEG, nil
	case FormatRAW:
		return FormatRAW, nil
	case FormatJPEGRAW:
		return FormatJPEGRAW, nil
	default:
		return "", fmt.Errorf("unknown image format %q (supported: jpeg, raw, jpeg+raw)", s)
	}
}

// MinimumStillPeriod is the shortest interval between stills the sensor
// pipeline sustains for the given format.
func MinimumStillPeriod(f ImageFormat) time.Duration {
	switch f {
	case FormatRAW:
		return 2 * time.Second
	case FormatJPEGRAW:
		return 2500 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}
