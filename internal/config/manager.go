// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Save writes the configuration to disk atomically.
func (m *Manager) Save(cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	data, err := yaml.Marshal(ToFileConfig(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := renameio.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ToFileConfig maps a resolved configuration back to its YAML shape.
func ToFileConfig(cfg *AppConfig) FileConfig {
	iv := cfg.Intervals
	return FileConfig{
		DataDir:  cfg.DataDir,
		LogLevel: cfg.LogLevel,
		API: APIFileConfig{
			ListenAddr: cfg.API.ListenAddr,
			RateLimit:  intPtr(cfg.API.RateLimit),
		},
		Store: StoreFileConfig{Backend: cfg.Store.Backend},
		Capture: CaptureFileConfig{
			Device:                cfg.Capture.Device,
			ImageFormat:           cfg.Capture.ImageFormat,
			MediaDir:              cfg.Capture.MediaDir,
			MinFreeMB:             intPtr(cfg.Capture.MinFreeMB),
			SleepOverhead:         durationString(cfg.Capture.SleepOverhead),
			StillFailureThreshold: intPtr(cfg.Capture.StillFailureThreshold),
			StillBreakerReset:     durationString(cfg.Capture.StillBreakerReset),
		},
		Notify: NotifyFileConfig{
			Throttle: durationString(cfg.Notify.Throttle),
			History:  intPtr(cfg.Notify.History),
		},
		Intervals: IntervalsFileConfig{
			WaitToStart:      durationString(iv.WaitToStart),
			StillDuration:    durationString(iv.StillDuration),
			StillPeriod:      durationString(iv.StillPeriod),
			DurationToRecord: durationString(iv.DurationToRecord),
			IdleDuration:     durationString(iv.IdleDuration),
			NumberOfCycles:   intPtr(iv.NumberOfCycles),
			WillTakeStills:   boolPtr(iv.WillTakeStills),
			WillRecordVideo:  boolPtr(iv.WillRecordVideo),
			Simultaneous:     boolPtr(iv.Simultaneous),
			StillsFirst:      boolPtr(iv.StillsFirst),
			SleepWhileIdle:   boolPtr(iv.SleepWhileIdle),
		},
	}
}

// durationString writes zero as "0s" so a saved file round-trips exactly.
func durationString(d time.Duration) string { return d.String() }

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
