// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the long-lived runtime: the API server, the config
// watcher and the interval scheduler.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/seacam/internal/audit"
	"github.com/ManuGH/seacam/internal/config"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
)

// App owns the long-lived runtime lifecycle (watchers, reload wiring, scheduler)
// and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	sched        Scheduler
	audit        *audit.Logger
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. The scheduler's timers are
// stopped during shutdown; its persisted session is left intact.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, sched Scheduler) *App {
	a := &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		sched:        sched,
		audit:        audit.NewLogger(),
		reloadSignal: syscall.SIGHUP,
	}
	if manager != nil && sched != nil {
		manager.RegisterShutdownHook("intervals", func(context.Context) error {
			sched.Shutdown()
			return nil
		})
	}
	return a
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// Best-effort: a missing watcher only disables hot reload.
		g.Go(func() error {
			if err := a.cfgHolder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_failed").Msg("config watcher stopped")
			}
			return nil
		})
	}

	if a.cfgHolder != nil && a.sched != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		applier := newConfigApplier(a.logger, a.sched, a.cfgHolder.Get())

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case next := <-applyCh:
					applier.apply(ctx, next)
				}
			}
		})
	}

	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str(log.FieldEvent, "config.reload_failed").
							Msg("config reload failed")
						a.audit.ConfigReload("signal", audit.ResultFailure, map[string]string{"error": err.Error()})
						continue
					}
					a.audit.ConfigReload("signal", audit.ResultSuccess, nil)
				}
			}
		})
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
