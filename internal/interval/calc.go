// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import "time"

// ActionDuration is the length of the action phase of one cycle.
func (s Settings) ActionDuration() time.Duration {
	switch {
	case s.WillTakeStills && s.WillRecordVideo:
		if s.SimultaneousStillsAndVideo {
			return max(s.StillDuration, s.DurationToRecord)
		}
		return s.StillDuration + s.DurationToRecord
	case s.WillTakeStills:
		return s.StillDuration
	case s.WillRecordVideo:
		return s.DurationToRecord
	default:
		return 0
	}
}

// CycleLength is one action phase plus one idle window.
func (s Settings) CycleLength() time.Duration {
	return s.ActionDuration() + s.IdleDuration
}

// ContinuousStills reports whether the still burst runs edge to edge into the
// next cycle. On a tie between simultaneous actions the stills are the
// continuous one.
func (s Settings) ContinuousStills() bool {
	if !s.WillTakeStills || s.IdleDuration > 0 {
		return false
	}
	if !s.WillRecordVideo {
		return true
	}
	return s.SimultaneousStillsAndVideo && s.StillDuration >= s.DurationToRecord
}

// ContinuousRecording reports whether the recording runs edge to edge into
// the next cycle.
func (s Settings) ContinuousRecording() bool {
	if !s.WillRecordVideo || s.IdleDuration > 0 {
		return false
	}
	if !s.WillTakeStills {
		return true
	}
	return s.SimultaneousStillsAndVideo && s.DurationToRecord > s.StillDuration
}

// CycleCount is the number of whole cycles that fit in running-offset.
// It is zero for a non-positive cycle length.
func CycleCount(running, offset, cycleLength time.Duration) int {
	if cycleLength <= 0 {
		return 0
	}
	elapsed := running - offset
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / cycleLength)
}

// CycleTime is the position within the current cycle, in [0, cycleLength).
func CycleTime(running, offset, cycleLength time.Duration) time.Duration {
	if cycleLength <= 0 {
		return 0
	}
	elapsed := running - offset
	if elapsed <= 0 {
		return 0
	}
	return elapsed % cycleLength
}
