// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

import (
	"context"
	"sync"

	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
)

// Simulated is an in-memory Device for bench runs and tests.
// Failures can be injected per operation.
type Simulated struct {
	mu     sync.Mutex
	logger zerolog.Logger

	fourK     bool
	busy      bool
	recording bool

	stills         int
	recordStarts   int
	recordStops    int
	stillErr       error
	startRecordErr error
	stopRecordErr  error
}

// NewSimulated returns an idle simulated camera.
func NewSimulated() *Simulated {
	return &Simulated{logger: log.WithComponent("capture.simulated")}
}

func (s *Simulated) CanTakeStill() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy
}

func (s *Simulated) TakeStill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stillErr != nil {
		return s.stillErr
	}
	s.stills++
	s.logger.Debug().Int("stills", s.stills).Msg("still captured")
	return nil
}

func (s *Simulated) IsRecording() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording, true
}

func (s *Simulated) StartRecording(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startRecordErr != nil {
		return s.startRecordErr
	}
	s.recording = true
	s.recordStarts++
	s.logger.Debug().Msg("recording started")
	return nil
}

func (s *Simulated) StopRecording(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopRecordErr != nil {
		return s.stopRecordErr
	}
	if s.recording {
		s.recordStops++
	}
	s.recording = false
	s.logger.Debug().Msg("recording stopped")
	return nil
}

func (s *Simulated) Is4K() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fourK
}

// Set4K toggles the simulated recording resolution.
func (s *Simulated) Set4K(v bool) {
	s.mu.Lock()
	s.fourK = v
	s.mu.Unlock()
}

// SetBusy makes CanTakeStill report false.
func (s *Simulated) SetBusy(v bool) {
	s.mu.Lock()
	s.busy = v
	s.mu.Unlock()
}

// FailStills makes every TakeStill return err (nil clears).
func (s *Simulated) FailStills(err error) {
	s.mu.Lock()
	s.stillErr = err
	s.mu.Unlock()
}

// FailStartRecording makes StartRecording return err (nil clears).
func (s *Simulated) FailStartRecording(err error) {
	s.mu.Lock()
	s.startRecordErr = err
	s.mu.Unlock()
}

// FailStopRecording makes StopRecording return err (nil clears).
func (s *Simulated) FailStopRecording(err error) {
	s.mu.Lock()
	s.stopRecordErr = err
	s.mu.Unlock()
}

// Counters is a snapshot of the simulated activity.
type Counters struct {
	Stills       int
	RecordStarts int
	RecordStops  int
	Recording    bool
}

// Counters returns what the device has done so far.
func (s *Simulated) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counters{
		Stills:       s.stills,
		RecordStarts: s.recordStarts,
		RecordStops:  s.recordStops,
		Recording:    s.recording,
	}
}
