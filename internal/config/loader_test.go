// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.DataDir = dataDir
	want.Capture.MediaDir = filepath.Join(dataDir, "media")
	want.Version = "v1.2.3"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
dataDir: `+dir+`
logLevel: debug
api:
  listenAddr: "127.0.0.1:9090"
store:
  backend: yaml
capture:
  imageFormat: raw
  minFreeMB: 0
  sleepOverhead: 45s
intervals:
  waitToStart: 2m
  stillDuration: 60s
  durationToRecord: 10s
  idleDuration: 0s
  numberOfCycles: 12
  willRecordVideo: true
  stillsFirst: false
`)

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9090", cfg.API.ListenAddr)
	assert.Equal(t, 30, cfg.API.RateLimit, "default kept")
	assert.Equal(t, "yaml", cfg.Store.Backend)
	assert.Equal(t, "raw", cfg.Capture.ImageFormat)
	assert.Zero(t, cfg.Capture.MinFreeMB, "explicit zero applies")
	assert.Equal(t, 45*time.Second, cfg.Capture.SleepOverhead)

	assert.Equal(t, IntervalDefaults{
		WaitToStart:      2 * time.Minute,
		StillDuration:    60 * time.Second,
		StillPeriod:      time.Second,
		DurationToRecord: 10 * time.Second,
		IdleDuration:     0,
		NumberOfCycles:   12,
		WillTakeStills:   true,
		WillRecordVideo:  true,
		StillsFirst:      false,
	}, cfg.Intervals)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nlogLevel: debug\napi:\n  listenAddr: \":9000\"\n")

	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvListen, ":9100")
	t.Setenv(EnvMinFreeMB, "64")
	t.Setenv(EnvSleepOverhead, "1m")
	t.Setenv(EnvStoreBackend, "memory")

	l := NewLoader(path, "test")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9100", cfg.API.ListenAddr)
	assert.Equal(t, 64, cfg.Capture.MinFreeMB)
	assert.Equal(t, time.Minute, cfg.Capture.SleepOverhead)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Contains(t, l.ConsumedEnvKeys, EnvListen)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nintervals:\n  stilDuration: 10s\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\n---\nlogLevel: debug\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleDocuments)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nintervals:\n  idleDuration: forever\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intervals.idleDuration")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	path := writeConfig(t, dir, "")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Intervals, cfg.Intervals)
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.DataDir = t.TempDir()
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"log level", func(c *AppConfig) { c.LogLevel = "loud" }, "logLevel"},
		{"listen addr", func(c *AppConfig) { c.API.ListenAddr = "nowhere" }, "api.listenAddr"},
		{"rate limit", func(c *AppConfig) { c.API.RateLimit = 0 }, "api.rateLimit"},
		{"backend", func(c *AppConfig) { c.Store.Backend = "redis" }, "store.backend"},
		{"device", func(c *AppConfig) { c.Capture.Device = "usb" }, "capture.device"},
		{"image format", func(c *AppConfig) { c.Capture.ImageFormat = "png" }, "capture.imageFormat"},
		{"min free", func(c *AppConfig) { c.Capture.MinFreeMB = -1 }, "capture.minFreeMB"},
		{"threshold", func(c *AppConfig) { c.Capture.StillFailureThreshold = 0 }, "capture.stillFailureThreshold"},
		{"idle", func(c *AppConfig) { c.Intervals.IdleDuration = -time.Second }, "intervals.idleDuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
