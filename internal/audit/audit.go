// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package audit records operator actions against the camera.
// It follows the WHO/WHAT/WHEN pattern so a dive log can be reconstructed.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/seacam/internal/log"
	"github.com/rs/zerolog"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Campaign control
	EventIntervalStart    EventType = "intervals.start"
	EventIntervalStop     EventType = "intervals.stop"
	EventIntervalSettings EventType = "intervals.settings"

	// Configuration events
	EventConfigReload EventType = "config.reload"
)

// Results
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailure  = "failure"
	ResultNoop     = "noop"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Actor      string // WHO: remote IP, or "signal" for process-level triggers
	Action     string // WHAT: human-readable action description
	Resource   string
	Result     string
	RemoteAddr string
	UserAgent  string
	RequestID  string
	Details    map[string]string
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewLogger creates a new audit logger with a dedicated "audit" component.
func NewLogger() *Logger {
	return New(log.WithComponent("audit"))
}

// New wraps an existing logger; every entry carries log_type=audit.
func New(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("log_type", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	e := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str(log.FieldEvent, string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		e.Str("remote_addr", event.RemoteAddr)
	}
	if event.UserAgent != "" {
		e.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		e.Str(log.FieldRequestID, event.RequestID)
	}
	for key, value := range event.Details {
		e.Str(key, value)
	}

	e.Msg("audit event")
}

// LogRequest fills the actor and correlation fields from r and logs event.
func (l *Logger) LogRequest(r *http.Request, event Event) {
	if l == nil {
		return
	}
	if event.RemoteAddr == "" {
		event.RemoteAddr = r.RemoteAddr
	}
	if event.Actor == "" {
		event.Actor = remoteIP(event.RemoteAddr)
	}
	if event.UserAgent == "" {
		event.UserAgent = r.UserAgent()
	}
	if event.RequestID == "" {
		event.RequestID = log.RequestIDFromContext(r.Context())
	}
	l.Log(event)
}

// ConfigReload logs a configuration reload.
func (l *Logger) ConfigReload(actor, result string, details map[string]string) {
	l.Log(Event{
		Type:     EventConfigReload,
		Actor:    actor,
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   result,
		Details:  details,
	})
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
