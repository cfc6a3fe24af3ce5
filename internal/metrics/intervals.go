// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	intervalState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "seacam_interval_state",
		Help: "Interval scheduler state (1 for the active state, 0 otherwise)",
	}, []string{"state"})

	cyclesCompleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seacam_interval_cycles_completed",
		Help: "Cycles completed in the current campaign",
	})

	offsetSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seacam_interval_offset_seconds",
		Help: "Accumulated drift compensation offset of the current campaign",
	})

	cycleTimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seacam_interval_cycle_time_seconds",
		Help: "Position within the current cycle",
	})

	runningSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seacam_interval_running_seconds",
		Help: "Elapsed time since the first cycle began",
	})

	waitedSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seacam_interval_waited_seconds",
		Help: "Progress through the pre-start delay",
	})

	stillsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seacam_stills_total",
		Help: "Still capture attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure|skipped

	recordingOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seacam_recording_ops_total",
		Help: "Recording start/stop calls by operation and outcome",
	}, []string{"op", "outcome"}) // op=start|stop outcome=success|failure

	campaignsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seacam_campaigns_total",
		Help: "Campaigns ended by outcome",
	}, []string{"outcome"}) // outcome=completed|stopped|cancelled|rejected|low_storage
)

var intervalStates = []string{"idle", "waiting", "action", "idle_phase"}

// SetIntervalState marks state as the active scheduler state.
func SetIntervalState(state string) {
	for _, s := range intervalStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		intervalState.WithLabelValues(s).Set(v)
	}
}

// SetProgress publishes the per-second cycle arithmetic.
func SetProgress(running, cycleTime, offset time.Duration, completed int) {
	runningSeconds.Set(running.Seconds())
	cycleTimeSeconds.Set(cycleTime.Seconds())
	offsetSeconds.Set(offset.Seconds())
	cyclesCompleted.Set(float64(completed))
}

// SetWaited publishes pre-start wait progress.
func SetWaited(waited time.Duration) {
	waitedSeconds.Set(waited.Seconds())
}

// RecordStill counts a still attempt.
func RecordStill(outcome string) {
	stillsTotal.WithLabelValues(outcome).Inc()
}

// RecordRecordingOp counts a recording start or stop.
func RecordRecordingOp(op, outcome string) {
	recordingOpsTotal.WithLabelValues(op, outcome).Inc()
}

// RecordCampaignEnd counts how a campaign ended.
func RecordCampaignEnd(outcome string) {
	campaignsTotal.WithLabelValues(outcome).Inc()
}
