// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ManuGH/seacam/internal/api"
	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/clock"
	"github.com/ManuGH/seacam/internal/config"
	"github.com/ManuGH/seacam/internal/health"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/ManuGH/seacam/internal/notify"
	"github.com/ManuGH/seacam/internal/store"
)

// Runtime is the wired object graph of one daemon process.
type Runtime struct {
	Store         store.Store
	Device        *capture.Guarded
	Notifications *notify.Recorder
	Scheduler     *interval.Scheduler
	Health        *health.Manager
	API           *api.Server
}

// Options overrides collaborators of Bootstrap; zero values select production ones.
type Options struct {
	Clock      clock.Clock
	Dispatcher interval.Dispatcher
	// FreeSpace replaces the statfs probe of the storage guard.
	FreeSpace capture.FreeSpaceFunc
}

// Bootstrap opens the store, builds the device and scheduler, restores the
// persisted settings and resumes a campaign that was running at shutdown.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (*Runtime, error) {
	logger := log.WithComponent("daemon")

	st, err := store.Open(cfg.Store.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	dev, err := newDevice(cfg.Capture.Device)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	guarded := capture.NewGuarded(dev, cfg.Capture.MediaDir, uint64(cfg.Capture.MinFreeMB)<<20)
	if opts.FreeSpace != nil {
		guarded.WithFreeSpaceFunc(opts.FreeSpace)
	}

	recorder := notify.NewRecorder(cfg.Notify.History)
	sink := notify.Multi{
		notify.NewThrottled(notify.NewLogSink(), cfg.Notify.Throttle),
		recorder,
	}

	settings, err := SettingsFromConfig(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	sched := interval.New(guarded, settings, interval.Options{
		Clock:                 opts.Clock,
		Dispatcher:            opts.Dispatcher,
		Notifier:              sink,
		Store:                 st,
		SleepOverhead:         cfg.Capture.SleepOverhead,
		StillFailureThreshold: cfg.Capture.StillFailureThreshold,
		StillBreakerReset:     cfg.Capture.StillBreakerReset,
	})

	sess, err := sched.Restore(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("restore interval settings: %w", err)
	}
	if sess.Enabled {
		if err := sched.ResumeCampaign(ctx, sess); err != nil && !errors.Is(err, interval.ErrNoSession) {
			logger.Warn().
				Err(err).
				Str(log.FieldEvent, "interval.resume_failed").
				Msg("could not resume interval campaign")
		}
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewDBChecker(sqliteDB(st)))
	hm.RegisterChecker(health.NewStorageChecker(guarded.Check))
	hm.RegisterChecker(health.NewSchedulerChecker(sched))

	return &Runtime{
		Store:         st,
		Device:        guarded,
		Notifications: recorder,
		Scheduler:     sched,
		Health:        hm,
		API: api.New(api.Deps{
			Controller:    sched,
			Health:        hm,
			Notifications: recorder,
			RateLimit:     cfg.API.RateLimit,
		}),
	}, nil
}

// Close releases the store. Call after the scheduler has been shut down.
func (r *Runtime) Close() error {
	return r.Store.Close()
}

// SettingsFromConfig seeds scheduler settings from the configured interval
// defaults and the image format's minimum still period.
func SettingsFromConfig(cfg config.AppConfig) (interval.Settings, error) {
	format, err := capture.ParseImageFormat(cfg.Capture.ImageFormat)
	if err != nil {
		return interval.Settings{}, err
	}
	d := cfg.Intervals
	s := interval.Settings{
		NumberOfCycles:             d.NumberOfCycles,
		WillTakeStills:             d.WillTakeStills,
		WillRecordVideo:            d.WillRecordVideo,
		SimultaneousStillsAndVideo: d.Simultaneous,
		StillsFirst:                d.StillsFirst,
		SleepWhileIdle:             d.SleepWhileIdle,
	}
	s.SetWaitToStart(d.WaitToStart)
	s.SetDurationToRecord(d.DurationToRecord)
	s.SetIdleDuration(d.IdleDuration)
	s.SetMinimumStillsPeriod(capture.MinimumStillPeriod(format))
	s.SetStillDuration(d.StillDuration)
	s.SetStillPeriod(d.StillPeriod)
	return s, nil
}

func newDevice(kind string) (capture.Device, error) {
	switch kind {
	case "", "simulated":
		return capture.NewSimulated(), nil
	default:
		return nil, fmt.Errorf("unsupported capture device %q", kind)
	}
}

func sqliteDB(st store.Store) *sql.DB {
	if s, ok := st.(*store.SqliteStore); ok {
		return s.DB
	}
	return nil
}
