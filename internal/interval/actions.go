// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import (
	"context"
	"errors"

	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/ManuGH/seacam/internal/metrics"
	"github.com/ManuGH/seacam/internal/notify"
	"github.com/ManuGH/seacam/internal/resilience"
)

// Device calls. These run under the Dispatcher, never under s.mu.

func (s *Scheduler) takeStill(c *campaign) {
	if c.done() {
		return
	}
	if !s.dev.CanTakeStill() {
		metrics.RecordStill("skipped")
		c.logger.Debug().Str(log.FieldEvent, "capture.still_skipped").Msg("camera not ready for a still")
		return
	}

	err := s.breaker.Execute(func() error { return s.dev.TakeStill(c.ctx) })
	switch {
	case err == nil:
		metrics.RecordStill("success")
	case c.done():
		return
	case errors.Is(err, capture.ErrLowStorage):
		metrics.RecordStill("failure")
		s.haltLowStorage(c, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		metrics.RecordStill("skipped")
		c.logger.Debug().Str(log.FieldEvent, "capture.still_skipped").Msg("still capture paused by breaker")
	default:
		metrics.RecordStill("failure")
		c.logger.Warn().Err(err).Str(log.FieldEvent, "capture.still_failed").Msg("failed to take still")
		if s.breaker.State() == resilience.StateOpen {
			s.notifier.Notify(notify.SeverityWarning, "Still capture paused after repeated failures")
		} else {
			s.notifier.Notify(notify.SeverityWarning, "Failed to take still")
		}
	}
}

// startRecording opens a new segment. A recording left running from an
// earlier cycle or a previous process is stopped first.
func (s *Scheduler) startRecording(c *campaign) {
	if c.done() {
		return
	}
	if recording, known := s.dev.IsRecording(); known && recording {
		c.logger.Debug().Str(log.FieldEvent, "capture.segment_restart").Msg("stopping running segment before restart")
		if err := s.dev.StopRecording(c.ctx); err != nil {
			metrics.RecordRecordingOp("stop", "failure")
			c.logger.Warn().Err(err).Str(log.FieldEvent, "capture.stop_failed").Msg("failed to stop running segment")
		} else {
			metrics.RecordRecordingOp("stop", "success")
		}
	}

	err := s.dev.StartRecording(c.ctx)
	switch {
	case err == nil:
		metrics.RecordRecordingOp("start", "success")
	case c.done():
		return
	case errors.Is(err, capture.ErrLowStorage):
		metrics.RecordRecordingOp("start", "failure")
		s.haltLowStorage(c, err)
	default:
		metrics.RecordRecordingOp("start", "failure")
		c.logger.Error().Err(err).Str(log.FieldEvent, "capture.start_failed").Msg("failed to start recording")
		s.notifier.Notify(notify.SeverityError, "Failed to start recording")
	}
}

// stopRecording ends the segment of the current cycle and reports the
// completion back to the scheduler.
func (s *Scheduler) stopRecording(c *campaign) {
	if c.done() {
		return
	}
	if err := s.dev.StopRecording(context.WithoutCancel(c.ctx)); err != nil {
		metrics.RecordRecordingOp("stop", "failure")
		c.logger.Warn().Err(err).Str(log.FieldEvent, "capture.stop_failed").Msg("failed to stop recording")
		s.notifier.Notify(notify.SeverityWarning, "Failed to stop recording")
	} else {
		metrics.RecordRecordingOp("stop", "success")
	}
	s.recordingStopped(c)
}

// haltRecording stops any recording after the campaign has ended, unless a
// newer campaign has already taken over the device.
func (s *Scheduler) haltRecording(c *campaign) {
	s.mu.Lock()
	next := s.cur
	s.mu.Unlock()
	if next != nil {
		c.logger.Debug().Str(log.FieldEvent, "capture.halt_skipped").Str("next_campaign", next.id).Msg("newer campaign owns the recording")
		return
	}
	if recording, known := s.dev.IsRecording(); known && !recording {
		return
	}
	if err := s.dev.StopRecording(context.WithoutCancel(c.ctx)); err != nil {
		metrics.RecordRecordingOp("stop", "failure")
		c.logger.Warn().Err(err).Str(log.FieldEvent, "capture.stop_failed").Msg("failed to stop recording on campaign end")
		return
	}
	metrics.RecordRecordingOp("stop", "success")
}

func (s *Scheduler) haltLowStorage(c *campaign, cause error) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	c.logger.Error().Err(cause).Str(log.FieldEvent, "interval.low_storage").Msg("storage low, stopping interval campaign")
	s.notifier.Notify(notify.SeverityError, "Storage is nearly full; intervals stopped")

	var fx effects
	s.stopLocked(c, outcomeLowStorage, &fx)
	s.mu.Unlock()

	fx.run()
}
