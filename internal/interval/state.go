// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import "time"

// State is the scheduler's position in the campaign lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateWaitingToStart State = "waiting"
	StateActionPhase    State = "action"
	StateIdlePhase      State = "idle_phase"
)

// Phase describes which actions of the current cycle are running.
type Phase string

const (
	PhaseNone             Phase = "none"
	PhaseStillsOnly       Phase = "stills_only"
	PhaseRecordingOnly    Phase = "recording_only"
	PhaseSimultaneous     Phase = "simultaneous"
	PhaseSequentialFirst  Phase = "sequential_first"
	PhaseSequentialSecond Phase = "sequential_second"
)

// Status is a point-in-time snapshot of a Scheduler.
type Status struct {
	State      State  `json:"state"`
	Phase      Phase  `json:"phase"`
	Enabled    bool   `json:"enabled"`
	CampaignID string `json:"campaign_id,omitempty"`

	// StartTime is when the first cycle begins (or began); zero when idle.
	StartTime        time.Time     `json:"start_time,omitempty"`
	WaitedTime       time.Duration `json:"waited_time"`
	TotalRunningTime time.Duration `json:"total_running_time"`
	Offset           time.Duration `json:"offset"`
	CycleLength      time.Duration `json:"cycle_length"`
	CycleCount       int           `json:"cycle_count"`
	CycleTime        time.Duration `json:"cycle_time"`
	CyclesCompleted  int           `json:"cycles_completed"`

	StillsActive    bool `json:"stills_active"`
	RecordingActive bool `json:"recording_active"`

	Settings Settings `json:"settings"`
}

// phaseOf derives the cycle phase from the running actions.
func phaseOf(s Settings, stills, recording bool) Phase {
	switch {
	case stills && recording:
		return PhaseSimultaneous
	case !stills && !recording:
		return PhaseNone
	case s.sequential():
		if stills == s.StillsFirst {
			return PhaseSequentialFirst
		}
		return PhaseSequentialSecond
	case stills:
		return PhaseStillsOnly
	default:
		return PhaseRecordingOnly
	}
}
