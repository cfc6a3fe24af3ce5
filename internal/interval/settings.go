// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import "time"

// Settings is the operator-mutable campaign configuration.
// Use the setters so clamps are applied at assignment time.
type Settings struct {
	WaitToStart      time.Duration `json:"wait_to_start"`
	StillDuration    time.Duration `json:"still_duration"`
	StillPeriod      time.Duration `json:"still_period"`
	DurationToRecord time.Duration `json:"duration_to_record"`
	IdleDuration     time.Duration `json:"idle_duration"`

	// MinimumStillsPeriod follows the camera's image format; it is not persisted.
	MinimumStillsPeriod time.Duration `json:"minimum_stills_period"`

	// NumberOfCycles <= 0 runs until stopped.
	NumberOfCycles int `json:"number_of_cycles"`

	WillTakeStills             bool `json:"will_take_stills"`
	WillRecordVideo            bool `json:"will_record_video"`
	SimultaneousStillsAndVideo bool `json:"simultaneous_stills_and_video"`
	StillsFirst                bool `json:"stills_first"`
	SleepWhileIdle             bool `json:"sleep_while_idle"`
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func (s *Settings) SetWaitToStart(d time.Duration) { s.WaitToStart = nonNegative(d) }

func (s *Settings) SetStillDuration(d time.Duration) {
	s.StillDuration = nonNegative(d)
	s.clampStillPeriod()
}

func (s *Settings) SetStillPeriod(d time.Duration) {
	s.StillPeriod = nonNegative(d)
	s.clampStillPeriod()
}

func (s *Settings) SetMinimumStillsPeriod(d time.Duration) {
	s.MinimumStillsPeriod = nonNegative(d)
	s.clampStillPeriod()
}

func (s *Settings) SetDurationToRecord(d time.Duration) { s.DurationToRecord = nonNegative(d) }

func (s *Settings) SetIdleDuration(d time.Duration) { s.IdleDuration = nonNegative(d) }

func (s *Settings) SetNumberOfCycles(n int) { s.NumberOfCycles = n }

// clampStillPeriod keeps StillPeriod within [MinimumStillsPeriod, StillDuration].
// The floor wins when the two bounds cross.
func (s *Settings) clampStillPeriod() {
	if s.StillPeriod > s.StillDuration {
		s.StillPeriod = s.StillDuration
	}
	if s.StillPeriod < s.MinimumStillsPeriod {
		s.StillPeriod = s.MinimumStillsPeriod
	}
}

// Normalize applies every assignment-time clamp. Decoders call it after
// overlaying raw values.
func (s *Settings) Normalize() {
	s.WaitToStart = nonNegative(s.WaitToStart)
	s.StillDuration = nonNegative(s.StillDuration)
	s.StillPeriod = nonNegative(s.StillPeriod)
	s.MinimumStillsPeriod = nonNegative(s.MinimumStillsPeriod)
	s.DurationToRecord = nonNegative(s.DurationToRecord)
	s.IdleDuration = nonNegative(s.IdleDuration)
	s.clampStillPeriod()
}

// sequential reports whether both actions run one after the other.
func (s Settings) sequential() bool {
	return s.WillTakeStills && s.WillRecordVideo && !s.SimultaneousStillsAndVideo
}
