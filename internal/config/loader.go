// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath loads
// defaults and environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, if any.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Capture.MediaDir == "" {
		cfg.Capture.MediaDir = filepath.Join(cfg.DataDir, "media")
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:  "/var/lib/seacam",
		LogLevel: "info",
		API: APIConfig{
			ListenAddr: ":8088",
			RateLimit:  30,
		},
		Store: StoreConfig{Backend: "sqlite"},
		Capture: CaptureConfig{
			Device:                "simulated",
			ImageFormat:           "jpeg",
			MinFreeMB:             512,
			SleepOverhead:         30 * time.Second,
			StillFailureThreshold: 5,
			StillBreakerReset:     30 * time.Second,
		},
		Notify: NotifyConfig{
			Throttle: time.Minute,
			History:  100,
		},
		Intervals: IntervalDefaults{
			StillDuration:    10 * time.Second,
			StillPeriod:      time.Second,
			DurationToRecord: 30 * time.Second,
			IdleDuration:     5 * time.Minute,
			WillTakeStills:   true,
			StillsFirst:      true,
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data)
}

func decodeStrict(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.LogLevel, f.LogLevel)

	setString(&cfg.API.ListenAddr, f.API.ListenAddr)
	setInt(&cfg.API.RateLimit, f.API.RateLimit)

	setString(&cfg.Store.Backend, f.Store.Backend)

	setString(&cfg.Capture.Device, f.Capture.Device)
	setString(&cfg.Capture.ImageFormat, f.Capture.ImageFormat)
	setString(&cfg.Capture.MediaDir, f.Capture.MediaDir)
	setInt(&cfg.Capture.MinFreeMB, f.Capture.MinFreeMB)
	setInt(&cfg.Capture.StillFailureThreshold, f.Capture.StillFailureThreshold)

	setInt(&cfg.Notify.History, f.Notify.History)

	iv := &cfg.Intervals
	setInt(&iv.NumberOfCycles, f.Intervals.NumberOfCycles)
	setBool(&iv.WillTakeStills, f.Intervals.WillTakeStills)
	setBool(&iv.WillRecordVideo, f.Intervals.WillRecordVideo)
	setBool(&iv.Simultaneous, f.Intervals.Simultaneous)
	setBool(&iv.StillsFirst, f.Intervals.StillsFirst)
	setBool(&iv.SleepWhileIdle, f.Intervals.SleepWhileIdle)

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"capture.sleepOverhead", f.Capture.SleepOverhead, &cfg.Capture.SleepOverhead},
		{"capture.stillBreakerReset", f.Capture.StillBreakerReset, &cfg.Capture.StillBreakerReset},
		{"notify.throttle", f.Notify.Throttle, &cfg.Notify.Throttle},
		{"intervals.waitToStart", f.Intervals.WaitToStart, &iv.WaitToStart},
		{"intervals.stillDuration", f.Intervals.StillDuration, &iv.StillDuration},
		{"intervals.stillPeriod", f.Intervals.StillPeriod, &iv.StillPeriod},
		{"intervals.durationToRecord", f.Intervals.DurationToRecord, &iv.DurationToRecord},
		{"intervals.idleDuration", f.Intervals.IdleDuration, &iv.IdleDuration},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.field, err)
		}
		*d.dst = v
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)
	cfg.Store.Backend = l.envString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Capture.Device = l.envString(EnvCaptureDevice, cfg.Capture.Device)
	cfg.Capture.ImageFormat = l.envString(EnvImageFormat, cfg.Capture.ImageFormat)
	cfg.Capture.MediaDir = l.envString(EnvMediaDir, cfg.Capture.MediaDir)
	cfg.Capture.MinFreeMB = l.envInt(EnvMinFreeMB, cfg.Capture.MinFreeMB)
	cfg.Capture.SleepOverhead = l.envDuration(EnvSleepOverhead, cfg.Capture.SleepOverhead)
	cfg.Capture.StillFailureThreshold = l.envInt(EnvStillFailures, cfg.Capture.StillFailureThreshold)
	cfg.Capture.StillBreakerReset = l.envDuration(EnvStillBreakerWait, cfg.Capture.StillBreakerReset)
	cfg.Notify.Throttle = l.envDuration(EnvNotifyThrottle, cfg.Notify.Throttle)
	cfg.Notify.History = l.envInt(EnvNotifyHistory, cfg.Notify.History)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
