// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import (
	"fmt"
	"strconv"
	"time"
)

// Keys used in the configuration store.
const (
	KeyWaitToStart      = "intervals.wait_to_start"
	KeyStillDuration    = "intervals.still_duration"
	KeyStillPeriod      = "intervals.still_period"
	KeyDurationToRecord = "intervals.duration_to_record"
	KeyIdleDuration     = "intervals.idle_duration"
	KeyNumberOfCycles   = "intervals.number_of_cycles"
	KeyWillTakeStills   = "intervals.will_take_stills"
	KeyWillRecordVideo  = "intervals.will_record_video"
	KeySimultaneous     = "intervals.simultaneous"
	KeyStillsFirst      = "intervals.stills_first"
	KeySleepWhileIdle   = "intervals.sleep_while_idle"

	KeySessionEnabled   = "session.enabled"
	KeySessionStartTime = "session.start_time"
)

// Values encodes the persisted settings as store pairs.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyWaitToStart:      s.WaitToStart.String(),
		KeyStillDuration:    s.StillDuration.String(),
		KeyStillPeriod:      s.StillPeriod.String(),
		KeyDurationToRecord: s.DurationToRecord.String(),
		KeyIdleDuration:     s.IdleDuration.String(),
		KeyNumberOfCycles:   strconv.Itoa(s.NumberOfCycles),
		KeyWillTakeStills:   strconv.FormatBool(s.WillTakeStills),
		KeyWillRecordVideo:  strconv.FormatBool(s.WillRecordVideo),
		KeySimultaneous:     strconv.FormatBool(s.SimultaneousStillsAndVideo),
		KeyStillsFirst:      strconv.FormatBool(s.StillsFirst),
		KeySleepWhileIdle:   strconv.FormatBool(s.SleepWhileIdle),
	}
}

// ApplyValues overlays the stored pairs present in values onto base and
// normalizes the result. Unknown keys are ignored.
func ApplyValues(base Settings, values map[string]string) (Settings, error) {
	s := base
	durations := map[string]*time.Duration{
		KeyWaitToStart:      &s.WaitToStart,
		KeyStillDuration:    &s.StillDuration,
		KeyStillPeriod:      &s.StillPeriod,
		KeyDurationToRecord: &s.DurationToRecord,
		KeyIdleDuration:     &s.IdleDuration,
	}
	for key, dst := range durations {
		raw, ok := values[key]
		if !ok {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return base, fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	flags := map[string]*bool{
		KeyWillTakeStills:  &s.WillTakeStills,
		KeyWillRecordVideo: &s.WillRecordVideo,
		KeySimultaneous:    &s.SimultaneousStillsAndVideo,
		KeyStillsFirst:     &s.StillsFirst,
		KeySleepWhileIdle:  &s.SleepWhileIdle,
	}
	for key, dst := range flags {
		raw, ok := values[key]
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return base, fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}

	if raw, ok := values[KeyNumberOfCycles]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return base, fmt.Errorf("%s: %w", KeyNumberOfCycles, err)
		}
		s.NumberOfCycles = n
	}

	s.Normalize()
	return s, nil
}

// Session is the persisted marker that lets a restarted process resume.
type Session struct {
	Enabled   bool
	StartTime time.Time // zero when no campaign is running
}

// Values encodes the session as store pairs.
func (s Session) Values() map[string]string {
	start := ""
	if !s.StartTime.IsZero() {
		start = s.StartTime.UTC().Format(time.RFC3339Nano)
	}
	return map[string]string{
		KeySessionEnabled:   strconv.FormatBool(s.Enabled),
		KeySessionStartTime: start,
	}
}

// ParseSession decodes the session pairs. Missing keys yield a disabled session.
func ParseSession(values map[string]string) (Session, error) {
	var sess Session
	if raw := values[KeySessionEnabled]; raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", KeySessionEnabled, err)
		}
		sess.Enabled = b
	}
	if raw := values[KeySessionStartTime]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", KeySessionStartTime, err)
		}
		sess.StartTime = t
	}
	if sess.Enabled && sess.StartTime.IsZero() {
		return Session{}, fmt.Errorf("%s set without %s", KeySessionEnabled, KeySessionStartTime)
	}
	return sess, nil
}
