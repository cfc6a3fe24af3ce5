// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/seacam/internal/config"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeScheduler struct {
	mu            sync.Mutex
	settings      interval.Settings
	sleepOverhead time.Duration
	updates       int
	shutdowns     int
}

func (f *fakeScheduler) UpdateSettings(_ context.Context, fn func(*interval.Settings)) (interval.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.settings)
	f.updates++
	return f.settings, nil
}

func (f *fakeScheduler) SetSleepOverhead(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleepOverhead = d
}

func (f *fakeScheduler) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
}

func (f *fakeScheduler) snapshot() fakeScheduler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeScheduler{settings: f.settings, sleepOverhead: f.sleepOverhead, updates: f.updates, shutdowns: f.shutdowns}
}

func TestConfigApplier_ImageFormat(t *testing.T) {
	sched := &fakeScheduler{settings: interval.Settings{StillDuration: 10 * time.Second, StillPeriod: time.Second}}
	prev := config.Defaults()
	a := newConfigApplier(zerolog.Nop(), sched, prev)

	next := prev
	next.Capture.ImageFormat = "raw"
	a.apply(context.Background(), next)

	got := sched.snapshot()
	assert.Equal(t, 1, got.updates)
	assert.Equal(t, 2*time.Second, got.settings.MinimumStillsPeriod)
	assert.Equal(t, 2*time.Second, got.settings.StillPeriod, "period raised to the new floor")

	// unchanged config applies nothing
	a.apply(context.Background(), next)
	assert.Equal(t, 1, sched.snapshot().updates)
}

func TestConfigApplier_SleepOverhead(t *testing.T) {
	sched := &fakeScheduler{}
	prev := config.Defaults()
	a := newConfigApplier(zerolog.Nop(), sched, prev)

	next := prev
	next.Capture.SleepOverhead = 2 * time.Minute
	a.apply(context.Background(), next)

	assert.Equal(t, 2*time.Minute, sched.snapshot().sleepOverhead)
	assert.Zero(t, sched.snapshot().updates)
}

func TestConfigApplier_LogLevel(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	prev := config.Defaults()
	a := newConfigApplier(zerolog.Nop(), &fakeScheduler{}, prev)
	next := prev
	next.LogLevel = "warn"
	a.apply(context.Background(), next)

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestRestartRequired(t *testing.T) {
	prev := config.Defaults()
	next := prev
	next.API.ListenAddr = ":9999"
	next.Store.Backend = "yaml"
	next.Notify.History = 5
	next.LogLevel = "debug"

	assert.Equal(t, []string{"api.listenAddr", "store.backend", "notify"}, restartRequired(prev, next))
	assert.Empty(t, restartRequired(prev, prev))
}
