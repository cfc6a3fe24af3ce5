// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"time"

	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/config"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
)

// Scheduler is the part of the interval scheduler the runtime drives.
type Scheduler interface {
	UpdateSettings(ctx context.Context, fn func(*interval.Settings)) (interval.Settings, error)
	SetSleepOverhead(d time.Duration)
	Shutdown()
}

// configApplier pushes hot-reloaded configuration into the running process.
type configApplier struct {
	logger  zerolog.Logger
	sched   Scheduler
	current config.AppConfig
}

func newConfigApplier(logger zerolog.Logger, sched Scheduler, current config.AppConfig) *configApplier {
	return &configApplier{logger: logger, sched: sched, current: current}
}

func (a *configApplier) apply(ctx context.Context, next config.AppConfig) {
	prev := a.current
	a.current = next

	if next.LogLevel != prev.LogLevel {
		if err := log.SetLevel(next.LogLevel); err != nil {
			a.logger.Warn().Err(err).Str("level", next.LogLevel).Msg("ignoring invalid log level")
		}
	}

	if next.Capture.ImageFormat != prev.Capture.ImageFormat {
		format, err := capture.ParseImageFormat(next.Capture.ImageFormat)
		if err == nil {
			minPeriod := capture.MinimumStillPeriod(format)
			if _, err := a.sched.UpdateSettings(ctx, func(s *interval.Settings) { s.SetMinimumStillsPeriod(minPeriod) }); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "config.apply_failed").Msg("failed to persist settings after image format change")
			}
			a.logger.Info().
				Str(log.FieldEvent, "config.image_format_applied").
				Str("image_format", string(format)).
				Dur("minimum_stills_period", minPeriod).
				Msg("image format changed")
		}
	}

	if next.Capture.SleepOverhead != prev.Capture.SleepOverhead {
		a.sched.SetSleepOverhead(next.Capture.SleepOverhead)
	}

	if fields := restartRequired(prev, next); len(fields) > 0 {
		a.logger.Warn().
			Str(log.FieldEvent, "config.restart_required").
			Strs("fields", fields).
			Msg("changed settings take effect after restart")
	}
	if next.Intervals != prev.Intervals {
		a.logger.Info().
			Str(log.FieldEvent, "config.interval_defaults_changed").
			Msg("interval defaults changed; stored operator settings keep precedence")
	}
}

func restartRequired(prev, next config.AppConfig) []string {
	var fields []string
	check := func(name string, changed bool) {
		if changed {
			fields = append(fields, name)
		}
	}
	check("dataDir", prev.DataDir != next.DataDir)
	check("api.listenAddr", prev.API.ListenAddr != next.API.ListenAddr)
	check("api.rateLimit", prev.API.RateLimit != next.API.RateLimit)
	check("store.backend", prev.Store.Backend != next.Store.Backend)
	check("capture.device", prev.Capture.Device != next.Capture.Device)
	check("capture.mediaDir", prev.Capture.MediaDir != next.Capture.MediaDir)
	check("capture.minFreeMB", prev.Capture.MinFreeMB != next.Capture.MinFreeMB)
	check("capture.stillFailureThreshold", prev.Capture.StillFailureThreshold != next.Capture.StillFailureThreshold)
	check("capture.stillBreakerReset", prev.Capture.StillBreakerReset != next.Capture.StillBreakerReset)
	check("notify", prev.Notify != next.Notify)
	return fields
}
