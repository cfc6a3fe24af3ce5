// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/validate"
)

var (
	storeBackends  = []string{"sqlite", "yaml", "memory"}
	captureDevices = []string{"simulated"}
)

// Validate validates an AppConfig. The data directory is created if missing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Directory("dataDir", cfg.DataDir, false)
	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error", cfg.LogLevel)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Positive("api.rateLimit", cfg.API.RateLimit)

	v.OneOf("store.backend", cfg.Store.Backend, storeBackends)

	v.OneOf("capture.device", cfg.Capture.Device, captureDevices)
	if _, err := capture.ParseImageFormat(cfg.Capture.ImageFormat); err != nil {
		v.AddError("capture.imageFormat", err.Error(), cfg.Capture.ImageFormat)
	}
	v.NonNegative("capture.minFreeMB", cfg.Capture.MinFreeMB)
	v.Duration("capture.sleepOverhead", cfg.Capture.SleepOverhead)
	v.Positive("capture.stillFailureThreshold", cfg.Capture.StillFailureThreshold)
	v.Duration("capture.stillBreakerReset", cfg.Capture.StillBreakerReset)

	v.Duration("notify.throttle", cfg.Notify.Throttle)
	v.NonNegative("notify.history", cfg.Notify.History)

	iv := cfg.Intervals
	v.Duration("intervals.waitToStart", iv.WaitToStart)
	v.Duration("intervals.stillDuration", iv.StillDuration)
	v.Duration("intervals.stillPeriod", iv.StillPeriod)
	v.Duration("intervals.durationToRecord", iv.DurationToRecord)
	v.Duration("intervals.idleDuration", iv.IdleDuration)

	return v.Err()
}
