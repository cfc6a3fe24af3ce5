// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package interval runs unattended capture campaigns: repeating cycles of
// still bursts and/or video recordings separated by idle windows.
//
// Cycle progress is derived purely from elapsed time and Settings:
//
//	CycleLength = ActionDuration + IdleDuration
//	CycleCount  = (TotalRunningTime - Offset) / CycleLength
//	CycleTime   = (TotalRunningTime - Offset) % CycleLength
//
// Offset grows by one second for every progress tick in which the clock says
// a cycle should have ended but an action is still running, so late hardware
// never shortens the cycles that follow.
//
// A Scheduler owns all session state behind one mutex. Timer callbacks carry
// the campaign they were armed for and become no-ops once that campaign ends.
// Device calls are handed to a Dispatcher after the lock is released.
package interval
