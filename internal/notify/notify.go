// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package notify carries operator-facing messages out of the controller.
// Delivery is best effort; nothing in the scheduler depends on it.
package notify

import (
	"sync"
	"time"

	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Message is a single notification.
type Message struct {
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Sink receives notifications. Implementations must not block.
type Sink interface {
	Notify(sev Severity, text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(sev Severity, text string)

func (f SinkFunc) Notify(sev Severity, text string) { f(sev, text) }

// Discard drops every message.
var Discard Sink = SinkFunc(func(Severity, string) {})

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink logging under the "notify" component.
func NewLogSink() *LogSink {
	return &LogSink{logger: log.WithComponent("notify")}
}

func (s *LogSink) Notify(sev Severity, text string) {
	var evt *zerolog.Event
	switch sev {
	case SeverityError:
		evt = s.logger.Error()
	case SeverityWarning:
		evt = s.logger.Warn()
	default:
		evt = s.logger.Info()
	}
	evt.Str("severity", string(sev)).Msg(text)
}

// Multi fans a message out to several sinks.
type Multi []Sink

func (m Multi) Notify(sev Severity, text string) {
	for _, s := range m {
		if s != nil {
			s.Notify(sev, text)
		}
	}
}

// Throttled forwards at most one identical message per interval.
// Info messages are never throttled.
type Throttled struct {
	next     Sink
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	dropped  map[string]int
}

// NewThrottled wraps next. A non-positive interval disables throttling.
func NewThrottled(next Sink, interval time.Duration) *Throttled {
	return &Throttled{
		next:     next,
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		dropped:  make(map[string]int),
	}
}

func (t *Throttled) Notify(sev Severity, text string) {
	if sev == SeverityInfo || t.interval <= 0 {
		t.next.Notify(sev, text)
		return
	}

	key := string(sev) + "\x00" + text
	t.mu.Lock()
	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = lim
	}
	allowed := lim.Allow()
	if !allowed {
		t.dropped[key]++
	}
	t.mu.Unlock()

	if allowed {
		t.next.Notify(sev, text)
	}
}

// Dropped returns how many copies of a message were suppressed.
func (t *Throttled) Dropped(sev Severity, text string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped[string(sev)+"\x00"+text]
}

// Recorder keeps the most recent messages in memory. The API serves them and
// tests assert on them.
type Recorder struct {
	mu    sync.Mutex
	limit int
	msgs  []Message
	now   func() time.Time
}

// NewRecorder keeps up to limit messages (unbounded when limit <= 0).
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit, now: time.Now}
}

func (r *Recorder) Notify(sev Severity, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Severity: sev, Text: text, At: r.now()})
	if r.limit > 0 && len(r.msgs) > r.limit {
		r.msgs = append([]Message(nil), r.msgs[len(r.msgs)-r.limit:]...)
	}
}

// Messages returns a copy of the recorded messages, oldest first.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Texts returns the recorded message texts with the given severity.
func (r *Recorder) Texts(sev Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		if m.Severity == sev {
			out = append(out, m.Text)
		}
	}
	return out
}
