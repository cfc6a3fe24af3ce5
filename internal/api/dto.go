// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"time"

	"github.com/ManuGH/seacam/internal/interval"
)

// SettingsResponse renders interval settings with Go duration strings.
type SettingsResponse struct {
	WaitToStart         string `json:"wait_to_start"`
	StillDuration       string `json:"still_duration"`
	StillPeriod         string `json:"still_period"`
	DurationToRecord    string `json:"duration_to_record"`
	IdleDuration        string `json:"idle_duration"`
	MinimumStillsPeriod string `json:"minimum_stills_period"`
	NumberOfCycles      int    `json:"number_of_cycles"`
	WillTakeStills      bool   `json:"will_take_stills"`
	WillRecordVideo     bool   `json:"will_record_video"`
	Simultaneous        bool   `json:"simultaneous_stills_and_video"`
	StillsFirst         bool   `json:"stills_first"`
	SleepWhileIdle      bool   `json:"sleep_while_idle"`
	CycleLength         string `json:"cycle_length"`
}

func newSettingsResponse(s interval.Settings) SettingsResponse {
	return SettingsResponse{
		WaitToStart:         s.WaitToStart.String(),
		StillDuration:       s.StillDuration.String(),
		StillPeriod:         s.StillPeriod.String(),
		DurationToRecord:    s.DurationToRecord.String(),
		IdleDuration:        s.IdleDuration.String(),
		MinimumStillsPeriod: s.MinimumStillsPeriod.String(),
		NumberOfCycles:      s.NumberOfCycles,
		WillTakeStills:      s.WillTakeStills,
		WillRecordVideo:     s.WillRecordVideo,
		Simultaneous:        s.SimultaneousStillsAndVideo,
		StillsFirst:         s.StillsFirst,
		SleepWhileIdle:      s.SleepWhileIdle,
		CycleLength:         s.CycleLength().String(),
	}
}

// SettingsPatch is a partial settings update. Absent fields are unchanged.
type SettingsPatch struct {
	WaitToStart      *string `json:"wait_to_start"`
	StillDuration    *string `json:"still_duration"`
	StillPeriod      *string `json:"still_period"`
	DurationToRecord *string `json:"duration_to_record"`
	IdleDuration     *string `json:"idle_duration"`
	NumberOfCycles   *int    `json:"number_of_cycles"`
	WillTakeStills   *bool   `json:"will_take_stills"`
	WillRecordVideo  *bool   `json:"will_record_video"`
	Simultaneous     *bool   `json:"simultaneous_stills_and_video"`
	StillsFirst      *bool   `json:"stills_first"`
	SleepWhileIdle   *bool   `json:"sleep_while_idle"`
}

// compile parses every duration up front so a bad value changes nothing.
func (p SettingsPatch) compile() (func(*interval.Settings), error) {
	type durationField struct {
		name string
		raw  *string
		set  func(*interval.Settings, time.Duration)
	}
	fields := []durationField{
		{"wait_to_start", p.WaitToStart, (*interval.Settings).SetWaitToStart},
		{"still_duration", p.StillDuration, (*interval.Settings).SetStillDuration},
		{"duration_to_record", p.DurationToRecord, (*interval.Settings).SetDurationToRecord},
		{"idle_duration", p.IdleDuration, (*interval.Settings).SetIdleDuration},
		// after still_duration: the period is clamped against it
		{"still_period", p.StillPeriod, (*interval.Settings).SetStillPeriod},
	}

	var setters []func(*interval.Settings)
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		d, err := time.ParseDuration(*f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("%s: duration cannot be negative", f.name)
		}
		set := f.set
		setters = append(setters, func(s *interval.Settings) { set(s, d) })
	}

	return func(s *interval.Settings) {
		if p.NumberOfCycles != nil {
			s.SetNumberOfCycles(*p.NumberOfCycles)
		}
		setBool(&s.WillTakeStills, p.WillTakeStills)
		setBool(&s.WillRecordVideo, p.WillRecordVideo)
		setBool(&s.SimultaneousStillsAndVideo, p.Simultaneous)
		setBool(&s.StillsFirst, p.StillsFirst)
		setBool(&s.SleepWhileIdle, p.SleepWhileIdle)
		for _, set := range setters {
			set(s)
		}
	}, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// StatusResponse renders a scheduler snapshot.
type StatusResponse struct {
	State            string           `json:"state"`
	Phase            string           `json:"phase"`
	Enabled          bool             `json:"enabled"`
	CampaignID       string           `json:"campaign_id,omitempty"`
	StartTime        *time.Time       `json:"start_time,omitempty"`
	WaitedTime       string           `json:"waited_time"`
	TotalRunningTime string           `json:"total_running_time"`
	Offset           string           `json:"offset"`
	CycleLength      string           `json:"cycle_length"`
	CycleCount       int              `json:"cycle_count"`
	CycleTime        string           `json:"cycle_time"`
	CyclesCompleted  int              `json:"cycles_completed"`
	StillsActive     bool             `json:"stills_active"`
	RecordingActive  bool             `json:"recording_active"`
	Settings         SettingsResponse `json:"settings"`
}

func newStatusResponse(st interval.Status) StatusResponse {
	out := StatusResponse{
		State:            string(st.State),
		Phase:            string(st.Phase),
		Enabled:          st.Enabled,
		CampaignID:       st.CampaignID,
		WaitedTime:       st.WaitedTime.String(),
		TotalRunningTime: st.TotalRunningTime.String(),
		Offset:           st.Offset.String(),
		CycleLength:      st.CycleLength.String(),
		CycleCount:       st.CycleCount,
		CycleTime:        st.CycleTime.String(),
		CyclesCompleted:  st.CyclesCompleted,
		StillsActive:     st.StillsActive,
		RecordingActive:  st.RecordingActive,
		Settings:         newSettingsResponse(st.Settings),
	}
	if !st.StartTime.IsZero() {
		t := st.StartTime.UTC()
		out.StartTime = &t
	}
	return out
}
