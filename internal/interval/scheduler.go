// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package interval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/clock"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/ManuGH/seacam/internal/metrics"
	"github.com/ManuGH/seacam/internal/notify"
	"github.com/ManuGH/seacam/internal/resilience"
	"github.com/ManuGH/seacam/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	outcomeCompleted  = "completed"
	outcomeStopped    = "stopped"
	outcomeCancelled  = "cancelled"
	outcomeRejected   = "rejected"
	outcomeLowStorage = "low_storage"

	persistTimeout = 5 * time.Second

	defaultStillFailureThreshold = 5
	defaultStillBreakerReset     = 30 * time.Second
)

// ErrNoSession is returned by ResumeCampaign when there is nothing to resume.
var ErrNoSession = errors.New("no persisted interval session")

// Options configures a Scheduler. Zero values select production defaults.
type Options struct {
	Clock      clock.Clock
	Dispatcher Dispatcher
	Notifier   notify.Sink
	// Store receives settings and session markers; nil disables persistence.
	Store store.Store

	// SleepOverhead is the power-down plus wake-up cost of the camera.
	// Idle windows shorter than twice this value produce no sleep hint.
	SleepOverhead time.Duration
	// OnSleepHint is called with the idle window when the camera may power down.
	OnSleepHint func(window time.Duration)

	StillFailureThreshold int
	StillBreakerReset     time.Duration
}

// campaign is the immutable identity of one StartCampaign call.
// Callbacks armed for a campaign hold a pointer to it.
type campaign struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

func (c *campaign) done() bool { return c.ctx.Err() != nil }

// Scheduler drives interval campaigns against a capture.Device.
type Scheduler struct {
	dev           capture.Device
	clock         clock.Clock
	dispatcher    Dispatcher
	notifier      notify.Sink
	store         store.Store
	breaker       *resilience.CircuitBreaker
	logger        zerolog.Logger
	sleepOverhead time.Duration
	onSleepHint   func(time.Duration)

	mu       sync.Mutex
	settings Settings
	state    State
	cur      *campaign

	startTime       time.Time
	waited          time.Duration
	totalRunning    time.Duration
	offset          time.Duration
	cyclesCompleted int

	stillsActive    bool
	recordingActive bool
	stopPending     bool

	waitTicker  *clock.Ticker
	waitTimer   clock.Timer
	progress    *clock.Ticker
	burst       *clock.Ticker
	stillTimer  clock.Timer
	// stillsEnd is the close of a timed burst; zero while continuous.
	stillsEnd time.Time
	recordTimer clock.Timer

	sessionGen uint64

	persistMu    sync.Mutex
	persistedGen uint64
}

// New creates an idle Scheduler with the given initial settings.
func New(dev capture.Device, settings Settings, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = Async
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.StillFailureThreshold <= 0 {
		opts.StillFailureThreshold = defaultStillFailureThreshold
	}
	if opts.StillBreakerReset <= 0 {
		opts.StillBreakerReset = defaultStillBreakerReset
	}
	settings.Normalize()

	s := &Scheduler{
		dev:           dev,
		clock:         opts.Clock,
		dispatcher:    opts.Dispatcher,
		notifier:      opts.Notifier,
		store:         opts.Store,
		logger:        log.WithComponent("interval.scheduler"),
		sleepOverhead: opts.SleepOverhead,
		onSleepHint:   opts.OnSleepHint,
		settings:      settings,
		state:         StateIdle,
	}
	s.breaker = resilience.NewCircuitBreaker("capture.stills",
		opts.StillFailureThreshold, opts.StillBreakerReset, resilience.WithClock(opts.Clock))
	metrics.SetIntervalState(string(StateIdle))
	return s
}

// Restore loads persisted settings into the scheduler and returns the
// persisted session marker.
func (s *Scheduler) Restore(ctx context.Context) (Session, error) {
	if s.store == nil {
		return Session{}, nil
	}
	values, err := s.store.Load(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("load interval settings: %w", err)
	}

	s.mu.Lock()
	next, err := ApplyValues(s.settings, values)
	if err == nil {
		s.settings = next
	}
	s.mu.Unlock()
	if err != nil {
		return Session{}, fmt.Errorf("decode interval settings: %w", err)
	}

	sess, err := ParseSession(values)
	if err != nil {
		return Session{}, fmt.Errorf("decode interval session: %w", err)
	}
	s.logger.Info().
		Str(log.FieldEvent, "interval.restored").
		Int("keys", len(values)).
		Bool("session_enabled", sess.Enabled).
		Msg("interval settings restored")
	return sess, nil
}

// Settings returns a copy of the current settings.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSleepOverhead changes the camera sleep cost used for later sleep hints.
func (s *Scheduler) SetSleepOverhead(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleepOverhead = max(d, 0)
}

// StillCaptureState reports the still-capture breaker state.
func (s *Scheduler) StillCaptureState() resilience.State {
	return s.breaker.State()
}

// UpdateSettings applies fn to a copy of the settings, normalizes it,
// installs it and writes every persisted key back to the store.
// A running campaign picks the new values up at its next decision point,
// except the still period, which re-arms an active burst immediately.
// While a campaign runs, settings it could not have started with are
// rejected with a configuration error and the current settings are kept.
func (s *Scheduler) UpdateSettings(ctx context.Context, fn func(*Settings)) (Settings, error) {
	logger := log.WithContext(ctx, s.logger)

	s.mu.Lock()
	prev := s.settings
	next := prev
	fn(&next)
	next.Normalize()
	if c := s.cur; c != nil {
		if err := s.validate(next); err != nil {
			s.mu.Unlock()
			logger.Warn().
				Err(err).
				Str(log.FieldEvent, "interval.settings_rejected").
				Str(log.FieldCampaignID, c.id).
				Msg("interval settings rejected while campaign runs")
			return prev, err
		}
	}
	changed := changedKeys(prev.Values(), next.Values())
	s.settings = next
	if c := s.cur; c != nil && s.burst != nil && next.StillPeriod != prev.StillPeriod {
		s.burst.Stop()
		s.burst = clock.Every(s.clock, next.StillPeriod, func() { s.onBurstTick(c) })
	}
	s.mu.Unlock()

	if len(changed) > 0 {
		logger.Info().
			Str(log.FieldEvent, "interval.settings_changed").
			Strs("keys", changed).
			Dur(log.FieldCycleLength, next.CycleLength()).
			Msg("interval settings updated")
	}

	if s.store == nil {
		return next, nil
	}
	if err := s.store.Save(ctx, next.Values()); err != nil {
		return next, fmt.Errorf("persist interval settings: %w", err)
	}
	return next, nil
}

func changedKeys(before, after map[string]string) []string {
	var keys []string
	for k, v := range after {
		if before[k] != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Status returns a snapshot of the scheduler.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.settings
	length := st.CycleLength()
	out := Status{
		State:            s.state,
		Phase:            phaseOf(st, s.stillsActive, s.recordingActive),
		Enabled:          s.cur != nil,
		StartTime:        s.startTime,
		WaitedTime:       s.waited,
		TotalRunningTime: s.totalRunning,
		Offset:           s.offset,
		CycleLength:      length,
		CycleCount:       CycleCount(s.totalRunning, s.offset, length),
		CycleTime:        CycleTime(s.totalRunning, s.offset, length),
		CyclesCompleted:  s.cyclesCompleted,
		StillsActive:     s.stillsActive,
		RecordingActive:  s.recordingActive || s.stopPending,
		Settings:         st,
	}
	if s.cur != nil {
		out.CampaignID = s.cur.id
	}
	return out
}

// StartCampaign validates the settings and begins a campaign. With a
// positive WaitToStart the first cycle starts after the delay.
func (s *Scheduler) StartCampaign(ctx context.Context) error {
	s.mu.Lock()
	if s.cur != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if err := s.validate(s.settings); err != nil {
		s.mu.Unlock()
		s.reject(ctx, err)
		return err
	}

	c := s.newCampaignLocked(ctx)
	st := s.settings
	s.startTime = s.clock.Now().Add(st.WaitToStart)
	s.waited, s.totalRunning, s.offset, s.cyclesCompleted = 0, 0, 0, 0
	s.breaker.Reset()

	var fx effects
	s.persistSessionLocked(Session{Enabled: true, StartTime: s.startTime}, &fx)

	c.logger.Info().
		Str(log.FieldEvent, "interval.started").
		Dur("wait_to_start", st.WaitToStart).
		Dur(log.FieldCycleLength, st.CycleLength()).
		Int("number_of_cycles", st.NumberOfCycles).
		Msg("interval campaign started")

	if st.WaitToStart > 0 {
		s.notifier.Notify(notify.SeverityInfo, fmt.Sprintf("Intervals will start in %s", st.WaitToStart))
		s.enterWaitLocked(c, st.WaitToStart)
	} else {
		s.notifier.Notify(notify.SeverityInfo, "Intervals started")
		s.beginCycleLocked(c, &fx)
	}
	s.mu.Unlock()

	fx.run()
	return nil
}

// ResumeCampaign re-arms a campaign recorded in sess after a restart.
// Cycle progress is recomputed from sess.StartTime; actions missed while
// the process was down are not replayed.
func (s *Scheduler) ResumeCampaign(ctx context.Context, sess Session) error {
	if !sess.Enabled || sess.StartTime.IsZero() {
		return ErrNoSession
	}

	s.mu.Lock()
	if s.cur != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	var fx effects
	if err := s.validate(s.settings); err != nil {
		s.persistSessionLocked(Session{}, &fx)
		s.mu.Unlock()
		fx.run()
		s.reject(ctx, err)
		return err
	}

	c := s.newCampaignLocked(ctx)
	st := s.settings
	now := s.clock.Now()
	s.startTime = sess.StartTime
	s.offset = 0
	s.breaker.Reset()

	if s.startTime.After(now) {
		remaining := s.startTime.Sub(now)
		s.waited = max(st.WaitToStart-remaining, 0)
		s.totalRunning, s.cyclesCompleted = 0, 0
		c.logger.Info().
			Str(log.FieldEvent, "interval.resumed").
			Dur("remaining_wait", remaining).
			Msg("interval campaign resumed before start")
		s.enterWaitLocked(c, remaining)
	} else {
		s.waited = st.WaitToStart
		s.totalRunning = now.Sub(s.startTime)
		s.cyclesCompleted = CycleCount(s.totalRunning, 0, st.CycleLength())
		c.logger.Info().
			Str(log.FieldEvent, "interval.resumed").
			Dur(log.FieldRunningTime, s.totalRunning).
			Int(log.FieldCyclesCompleted, s.cyclesCompleted).
			Msg("interval campaign resumed")

		if n := st.NumberOfCycles; n > 0 && s.cyclesCompleted >= n {
			s.notifier.Notify(notify.SeverityInfo, "Intervals finished")
			s.stopLocked(c, outcomeCompleted, &fx)
			s.mu.Unlock()
			fx.run()
			return nil
		}
		// Continuous recording survives on the camera; a continuous burst
		// is ours to restart.
		if st.WillTakeStills && st.ContinuousStills() {
			s.startStillsLocked(c, false, &fx)
		}
		s.progress = clock.Every(s.clock, time.Second, func() { s.onProgressTick(c) })
		s.setStateLocked(c, StateActionPhase)
	}
	s.notifier.Notify(notify.SeverityInfo, "Intervals resumed")
	s.mu.Unlock()

	fx.run()
	return nil
}

// StopCampaign ends the running campaign, if any. It reports whether a
// campaign was running. Calling it again is a no-op.
func (s *Scheduler) StopCampaign() bool {
	s.mu.Lock()
	c := s.cur
	if c == nil {
		s.mu.Unlock()
		return false
	}
	outcome, text := outcomeStopped, "Intervals stopped"
	if s.state == StateWaitingToStart {
		outcome, text = outcomeCancelled, "Intervals cancelled before start"
	}
	s.notifier.Notify(notify.SeverityInfo, text)

	var fx effects
	s.stopLocked(c, outcome, &fx)
	s.mu.Unlock()

	fx.run()
	return true
}

// Shutdown disarms every timer without clearing the persisted session, so
// the next process can resume the campaign. The device is left as is.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cur
	if c == nil {
		return
	}
	c.cancel()
	s.stopTimersLocked()
	s.cur = nil
	s.stillsActive, s.recordingActive, s.stopPending = false, false, false
	s.setStateLocked(c, StateIdle)
	c.logger.Info().
		Str(log.FieldEvent, "interval.suspended").
		Int(log.FieldCyclesCompleted, s.cyclesCompleted).
		Msg("interval campaign suspended for shutdown")
}

func (s *Scheduler) validate(st Settings) error {
	switch {
	case !st.WillTakeStills && !st.WillRecordVideo:
		return ErrNoActionSelected
	case st.WillTakeStills && st.WillRecordVideo && st.SimultaneousStillsAndVideo && s.dev.Is4K():
		return ErrSimultaneous4K
	case st.CycleLength() <= 0:
		return ErrZeroCycleLength
	}
	return nil
}

func (s *Scheduler) reject(ctx context.Context, err error) {
	metrics.RecordCampaignEnd(outcomeRejected)
	logger := log.WithContext(ctx, s.logger)
	logger.Warn().
		Err(err).
		Str(log.FieldEvent, "interval.rejected").
		Msg("interval campaign rejected")
	s.notifier.Notify(notify.SeverityError, fmt.Sprintf("Intervals not started: %v", err))
}

func (s *Scheduler) newCampaignLocked(ctx context.Context) *campaign {
	id := uuid.NewString()
	cctx, cancel := context.WithCancel(log.ContextWithCampaignID(context.Background(), id))
	c := &campaign{
		id:     id,
		ctx:    cctx,
		cancel: cancel,
		logger: log.WithContext(log.ContextWithCampaignID(ctx, id), s.logger),
	}
	s.cur = c
	return c
}

// current reports whether c is the live campaign. Callers hold s.mu.
func (s *Scheduler) current(c *campaign) bool {
	return s.cur == c && !c.done()
}

func (s *Scheduler) setStateLocked(c *campaign, next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	metrics.SetIntervalState(string(next))
	c.logger.Debug().
		Str(log.FieldEvent, "interval.state").
		Str(log.FieldOldState, string(prev)).
		Str(log.FieldNewState, string(next)).
		Msg("interval state transition")
}

func (s *Scheduler) enterWaitLocked(c *campaign, remaining time.Duration) {
	s.setStateLocked(c, StateWaitingToStart)
	metrics.SetWaited(s.waited)
	s.waitTicker = clock.Every(s.clock, time.Second, func() { s.onWaitTick(c) })
	s.waitTimer = s.clock.AfterFunc(remaining, func() { s.onWaitElapsed(c) })
}

func (s *Scheduler) onWaitTick(c *campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(c) || s.state != StateWaitingToStart {
		return
	}
	s.waited = min(s.waited+time.Second, s.settings.WaitToStart)
	metrics.SetWaited(s.waited)
	c.logger.Debug().
		Str(log.FieldEvent, "interval.waiting").
		Dur("waited", s.waited).
		Dur("wait_to_start", s.settings.WaitToStart).
		Msg("waiting to start")
}

func (s *Scheduler) onWaitElapsed(c *campaign) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	s.waitTicker.Stop()
	s.waitTicker, s.waitTimer = nil, nil
	s.waited = s.settings.WaitToStart
	metrics.SetWaited(s.waited)
	s.notifier.Notify(notify.SeverityInfo, "Intervals started")

	var fx effects
	s.beginCycleLocked(c, &fx)
	s.mu.Unlock()

	fx.run()
}

// beginCycleLocked starts the actions that open a cycle. Continuous
// actions are started only once, on the first cycle.
func (s *Scheduler) beginCycleLocked(c *campaign, fx *effects) {
	st := s.settings
	first := s.cyclesCompleted == 0
	contStills, contRec := st.ContinuousStills(), st.ContinuousRecording()

	startStills := st.WillTakeStills && (!st.WillRecordVideo ||
		(contStills && first) ||
		(!contStills && (st.SimultaneousStillsAndVideo || st.StillsFirst)))
	startRec := st.WillRecordVideo && (!st.WillTakeStills ||
		(contRec && first) ||
		(!contRec && (st.SimultaneousStillsAndVideo || !st.StillsFirst)))

	c.logger.Info().
		Str(log.FieldEvent, "interval.cycle_started").
		Int(log.FieldCycle, s.cyclesCompleted).
		Bool("stills", startStills).
		Bool("recording", startRec).
		Msg("cycle started")

	if startStills {
		s.startStillsLocked(c, !contStills, fx)
	}
	if startRec {
		s.startRecordingLocked(c, !contRec, fx)
	}
	if s.progress == nil {
		s.progress = clock.Every(s.clock, time.Second, func() { s.onProgressTick(c) })
	}
	s.setStateLocked(c, StateActionPhase)
}

func (s *Scheduler) startStillsLocked(c *campaign, timed bool, fx *effects) {
	if !timed && s.stillsActive && s.burst != nil {
		return
	}
	s.burst.Stop()
	stopTimer(s.stillTimer)
	s.stillTimer, s.stillsEnd = nil, time.Time{}
	s.stillsActive = true

	fx.add(func() { s.dispatcher.Dispatch(OpTakeStill, func() { s.takeStill(c) }) })
	// The duration timer is armed first so it wins a shared deadline.
	if timed {
		s.stillsEnd = s.clock.Now().Add(s.settings.StillDuration)
		s.stillTimer = s.clock.AfterFunc(s.settings.StillDuration, func() { s.onStillsElapsed(c) })
	}
	s.burst = clock.Every(s.clock, s.settings.StillPeriod, func() { s.onBurstTick(c) })
}

func (s *Scheduler) startRecordingLocked(c *campaign, timed bool, fx *effects) {
	stopTimer(s.recordTimer)
	s.recordTimer = nil
	s.recordingActive = true

	fx.add(func() { s.dispatcher.Dispatch(OpStartRecording, func() { s.startRecording(c) }) })
	if timed {
		s.recordTimer = s.clock.AfterFunc(s.settings.DurationToRecord, func() { s.onRecordingElapsed(c) })
	}
}

func (s *Scheduler) onBurstTick(c *campaign) {
	s.mu.Lock()
	ok := s.current(c) && s.stillsActive &&
		(s.stillsEnd.IsZero() || s.clock.Now().Before(s.stillsEnd))
	s.mu.Unlock()
	if ok {
		s.dispatcher.Dispatch(OpTakeStill, func() { s.takeStill(c) })
	}
}

func (s *Scheduler) onStillsElapsed(c *campaign) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	s.stillTimer, s.stillsEnd = nil, time.Time{}
	s.burst.Stop()
	s.burst = nil
	s.stillsActive = false
	c.logger.Debug().Str(log.FieldEvent, "interval.stills_done").Msg("still burst finished")

	var fx effects
	st := s.settings
	if st.sequential() && st.StillsFirst {
		s.startRecordingLocked(c, !st.ContinuousRecording(), &fx)
	} else {
		s.checkIdleLocked(c, &fx)
	}
	s.mu.Unlock()

	fx.run()
}

func (s *Scheduler) onRecordingElapsed(c *campaign) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	s.recordTimer = nil
	s.recordingActive = false
	s.stopPending = true
	c.logger.Debug().Str(log.FieldEvent, "interval.recording_done").Msg("recording slot finished")

	var fx effects
	fx.add(func() { s.dispatcher.Dispatch(OpStopRecording, func() { s.stopRecording(c) }) })
	st := s.settings
	if st.sequential() && !st.StillsFirst {
		s.startStillsLocked(c, !st.ContinuousStills(), &fx)
	} else {
		s.checkIdleLocked(c, &fx)
	}
	s.mu.Unlock()

	fx.run()
}

// recordingStopped is the completion of an asynchronous stop. Until it
// arrives the recording still counts as running.
func (s *Scheduler) recordingStopped(c *campaign) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	s.stopPending = false
	var fx effects
	s.checkIdleLocked(c, &fx)
	s.mu.Unlock()

	fx.run()
}

func (s *Scheduler) actionActiveLocked() bool {
	return s.stillTimer != nil || s.recordTimer != nil || s.stopPending
}

// checkIdleLocked enters the idle phase once nothing is running and
// emits the sleep hint when the idle window is worth powering down for.
func (s *Scheduler) checkIdleLocked(c *campaign, fx *effects) {
	if s.actionActiveLocked() || s.stillsActive || s.recordingActive {
		return
	}
	s.setStateLocked(c, StateIdlePhase)

	st := s.settings
	if !st.SleepWhileIdle || st.IdleDuration <= 0 {
		return
	}
	running := s.clock.Now().Sub(s.startTime)
	nextBoundary := time.Duration(s.cyclesCompleted+1)*st.CycleLength() + s.offset
	window := min(nextBoundary-running, st.IdleDuration)
	if window < 2*s.sleepOverhead || window <= 0 {
		c.logger.Debug().
			Str(log.FieldEvent, "interval.sleep_skipped").
			Dur("window", window).
			Msg("idle window too short to sleep")
		return
	}
	c.logger.Info().
		Str(log.FieldEvent, "interval.sleep_hint").
		Dur("window", window).
		Msg("camera may sleep until next cycle")
	s.notifier.Notify(notify.SeverityInfo, fmt.Sprintf("Camera may sleep for %s", window))
	if hint := s.onSleepHint; hint != nil {
		fx.add(func() { hint(window) })
	}
}

// onProgressTick is the once-per-second heartbeat. It recomputes the cycle
// arithmetic, extends Offset while an action overruns its slot, and
// completes the cycle otherwise.
func (s *Scheduler) onProgressTick(c *campaign) {
	s.mu.Lock()
	if !s.current(c) {
		s.mu.Unlock()
		return
	}
	var fx effects
	length := s.settings.CycleLength()
	s.totalRunning = s.clock.Now().Sub(s.startTime)
	count := CycleCount(s.totalRunning, s.offset, length)

	if length > 0 && count > s.cyclesCompleted {
		if s.actionActiveLocked() {
			s.offset += time.Second
			c.logger.Debug().
				Str(log.FieldEvent, "interval.offset").
				Dur(log.FieldOffset, s.offset).
				Int(log.FieldCycle, s.cyclesCompleted).
				Msg("action overran its slot")
		} else {
			s.completeCycleLocked(c, count, &fx)
		}
	}
	metrics.SetProgress(s.totalRunning, CycleTime(s.totalRunning, s.offset, length), s.offset, s.cyclesCompleted)
	s.mu.Unlock()

	fx.run()
}

func (s *Scheduler) completeCycleLocked(c *campaign, count int, fx *effects) {
	s.cyclesCompleted = count
	c.logger.Info().
		Str(log.FieldEvent, "interval.cycle_complete").
		Int(log.FieldCyclesCompleted, count).
		Dur(log.FieldOffset, s.offset).
		Dur(log.FieldRunningTime, s.totalRunning).
		Msg("cycle complete")

	if n := s.settings.NumberOfCycles; n > 0 && count >= n {
		s.notifier.Notify(notify.SeverityInfo, "Intervals finished")
		s.stopLocked(c, outcomeCompleted, fx)
		return
	}
	s.beginCycleLocked(c, fx)
}

// stopLocked tears the campaign down. Recording is stopped unless the
// campaign never left the pre-start wait.
func (s *Scheduler) stopLocked(c *campaign, outcome string, fx *effects) {
	wasWaiting := s.state == StateWaitingToStart

	c.cancel()
	s.stopTimersLocked()
	s.cur = nil
	s.stillsActive, s.recordingActive, s.stopPending = false, false, false
	s.startTime = time.Time{}
	s.setStateLocked(c, StateIdle)
	s.persistSessionLocked(Session{}, fx)

	if !wasWaiting {
		fx.add(func() { s.dispatcher.Dispatch(OpStopRecording, func() { s.haltRecording(c) }) })
	}

	metrics.RecordCampaignEnd(outcome)
	c.logger.Info().
		Str(log.FieldEvent, "interval.stopped").
		Str("outcome", outcome).
		Int(log.FieldCyclesCompleted, s.cyclesCompleted).
		Dur(log.FieldOffset, s.offset).
		Msg("interval campaign ended")
}

func (s *Scheduler) stopTimersLocked() {
	s.waitTicker.Stop()
	s.progress.Stop()
	s.burst.Stop()
	stopTimer(s.waitTimer)
	stopTimer(s.stillTimer)
	stopTimer(s.recordTimer)
	s.waitTicker, s.progress, s.burst = nil, nil, nil
	s.waitTimer, s.stillTimer, s.recordTimer = nil, nil, nil
	s.stillsEnd = time.Time{}
}

func stopTimer(t clock.Timer) {
	if t != nil {
		t.Stop()
	}
}

// persistSessionLocked queues a session write. Writes carry a generation
// so a slow earlier write never overwrites a later one.
func (s *Scheduler) persistSessionLocked(sess Session, fx *effects) {
	if s.store == nil {
		return
	}
	s.sessionGen++
	gen := s.sessionGen
	fx.add(func() { s.persistSession(gen, sess) })
}

func (s *Scheduler) persistSession(gen uint64, sess Session) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if gen <= s.persistedGen {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.Save(ctx, sess.Values()); err != nil {
		s.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "interval.persist_failed").
			Bool("session_enabled", sess.Enabled).
			Msg("failed to persist interval session")
		return
	}
	s.persistedGen = gen
}
