// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version  string
	DataDir  string
	LogLevel string

	API       APIConfig
	Store     StoreConfig
	Capture   CaptureConfig
	Notify    NotifyConfig
	Intervals IntervalDefaults
}

// APIConfig configures the local control surface.
type APIConfig struct {
	ListenAddr string
	// RateLimit is the number of mutating requests allowed per minute per client.
	RateLimit int
}

// StoreConfig selects the settings store backend.
type StoreConfig struct {
	Backend string // sqlite | yaml | memory
}

// CaptureConfig describes the camera and its media volume.
type CaptureConfig struct {
	Device      string // simulated
	ImageFormat string // jpeg | raw | jpeg+raw
	// MediaDir is where captures land; free space is checked here.
	MediaDir  string
	MinFreeMB int
	// SleepOverhead is the camera's power-down plus wake-up cost.
	SleepOverhead         time.Duration
	StillFailureThreshold int
	StillBreakerReset     time.Duration
}

// NotifyConfig controls operator notifications.
type NotifyConfig struct {
	// Throttle suppresses identical warnings and errors repeated within this window.
	Throttle time.Duration
	// History is how many recent notifications the API keeps.
	History int
}

// IntervalDefaults seeds the scheduler settings when the store holds no value.
type IntervalDefaults struct {
	WaitToStart      time.Duration
	StillDuration    time.Duration
	StillPeriod      time.Duration
	DurationToRecord time.Duration
	IdleDuration     time.Duration
	NumberOfCycles   int
	WillTakeStills   bool
	WillRecordVideo  bool
	Simultaneous     bool
	StillsFirst      bool
	SleepWhileIdle   bool
}

// FileConfig is the on-disk YAML shape. Durations are Go duration strings.
type FileConfig struct {
	DataDir   string              `yaml:"dataDir,omitempty"`
	LogLevel  string              `yaml:"logLevel,omitempty"`
	API       APIFileConfig       `yaml:"api,omitempty"`
	Store     StoreFileConfig     `yaml:"store,omitempty"`
	Capture   CaptureFileConfig   `yaml:"capture,omitempty"`
	Notify    NotifyFileConfig    `yaml:"notify,omitempty"`
	Intervals IntervalsFileConfig `yaml:"intervals,omitempty"`
}

type APIFileConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
	RateLimit  *int   `yaml:"rateLimit,omitempty"`
}

type StoreFileConfig struct {
	Backend string `yaml:"backend,omitempty"`
}

type CaptureFileConfig struct {
	Device                string `yaml:"device,omitempty"`
	ImageFormat           string `yaml:"imageFormat,omitempty"`
	MediaDir              string `yaml:"mediaDir,omitempty"`
	MinFreeMB             *int   `yaml:"minFreeMB,omitempty"`
	SleepOverhead         string `yaml:"sleepOverhead,omitempty"`
	StillFailureThreshold *int   `yaml:"stillFailureThreshold,omitempty"`
	StillBreakerReset     string `yaml:"stillBreakerReset,omitempty"`
}

type NotifyFileConfig struct {
	Throttle string `yaml:"throttle,omitempty"`
	History  *int   `yaml:"history,omitempty"`
}

type IntervalsFileConfig struct {
	WaitToStart      string `yaml:"waitToStart,omitempty"`
	StillDuration    string `yaml:"stillDuration,omitempty"`
	StillPeriod      string `yaml:"stillPeriod,omitempty"`
	DurationToRecord string `yaml:"durationToRecord,omitempty"`
	IdleDuration     string `yaml:"idleDuration,omitempty"`
	NumberOfCycles   *int   `yaml:"numberOfCycles,omitempty"`
	WillTakeStills   *bool  `yaml:"willTakeStills,omitempty"`
	WillRecordVideo  *bool  `yaml:"willRecordVideo,omitempty"`
	Simultaneous     *bool  `yaml:"simultaneous,omitempty"`
	StillsFirst      *bool  `yaml:"stillsFirst,omitempty"`
	SleepWhileIdle   *bool  `yaml:"sleepWhileIdle,omitempty"`
}
