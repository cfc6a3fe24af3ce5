// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ManuGH/seacam/internal/audit"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/log"
)

const maxSettingsBody = 16 << 10

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(s.ctrl.Status()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	err := s.ctrl.StartCampaign(r.Context())
	ev := audit.Event{
		Type:     audit.EventIntervalStart,
		Action:   "start interval campaign",
		Resource: "intervals",
		Result:   audit.ResultSuccess,
	}
	switch {
	case err == nil:
		st := s.ctrl.Status()
		ev.Details = map[string]string{"campaign_id": st.CampaignID}
		s.audit.LogRequest(r, ev)
		writeJSON(w, http.StatusAccepted, newStatusResponse(st))
	case errors.Is(err, interval.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, "already_running", err.Error())
	case interval.IsConfigError(err):
		ev.Result = audit.ResultRejected
		ev.Details = map[string]string{"reason": err.Error()}
		s.audit.LogRequest(r, ev)
		writeError(w, http.StatusUnprocessableEntity, "invalid_configuration", err.Error())
	default:
		logger := log.WithContext(r.Context(), s.logger)
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.start_failed").
			Msg("failed to start interval campaign")
		writeError(w, http.StatusInternalServerError, "start_failed", err.Error())
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	stopped := s.ctrl.StopCampaign()
	result := audit.ResultSuccess
	if !stopped {
		result = audit.ResultNoop
	}
	s.audit.LogRequest(r, audit.Event{
		Type:     audit.EventIntervalStop,
		Action:   "stop interval campaign",
		Resource: "intervals",
		Result:   result,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"stopped": stopped,
		"status":  newStatusResponse(s.ctrl.Status()),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newSettingsResponse(s.ctrl.Settings()))
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch SettingsPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	apply, err := patch.compile()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		return
	}

	next, err := s.ctrl.UpdateSettings(r.Context(), apply)
	ev := audit.Event{
		Type:     audit.EventIntervalSettings,
		Action:   "update interval settings",
		Resource: "intervals/settings",
		Result:   audit.ResultSuccess,
		Details: map[string]string{
			"cycle_length": next.CycleLength().String(),
			"cycles":       strconv.Itoa(next.NumberOfCycles),
		},
	}
	switch {
	case err == nil:
		s.audit.LogRequest(r, ev)
	case interval.IsConfigError(err):
		ev.Result = audit.ResultRejected
		ev.Details["reason"] = err.Error()
		s.audit.LogRequest(r, ev)
		writeError(w, http.StatusUnprocessableEntity, "invalid_configuration", err.Error())
		return
	default:
		ev.Result = audit.ResultFailure
		s.audit.LogRequest(r, ev)
		// Applied in memory; only the write-back failed.
		logger := log.WithContext(r.Context(), s.logger)
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "api.settings_persist_failed").
			Msg("settings applied but not persisted")
		writeError(w, http.StatusInternalServerError, "persist_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(next))
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.notes.Messages())
}
