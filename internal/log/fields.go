// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldCampaignID = "campaign_id"
	FieldRequestID  = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Cycle arithmetic
	FieldCycle           = "cycle"
	FieldCycleCount      = "cycle_count"
	FieldCycleTime       = "cycle_time"
	FieldCycleLength     = "cycle_length"
	FieldOffset          = "offset"
	FieldRunningTime     = "running_time"
	FieldCyclesCompleted = "cycles_completed"

	// Capture fields
	FieldAction = "action"
	FieldDevice = "device"
	FieldPath   = "path"
)
