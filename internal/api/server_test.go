// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/seacam/internal/audit"
	"github.com/ManuGH/seacam/internal/capture"
	"github.com/ManuGH/seacam/internal/clock"
	"github.com/ManuGH/seacam/internal/health"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/notify"
	"github.com/ManuGH/seacam/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	clk   *clock.Fake
	dev   *capture.Simulated
	store *store.MemoryStore
	notes *notify.Recorder
	sched *interval.Scheduler
	srv   *Server
	audit bytes.Buffer
}

func defaultSettings() interval.Settings {
	return interval.Settings{
		StillDuration:  10 * time.Second,
		StillPeriod:    time.Second,
		IdleDuration:   50 * time.Second,
		WillTakeStills: true,
		StillsFirst:    true,
	}
}

func newTestEnv(t *testing.T, settings interval.Settings, rateLimit int) *testEnv {
	t.Helper()
	e := &testEnv{
		clk:   clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		dev:   capture.NewSimulated(),
		store: store.NewMemoryStore(),
		notes: notify.NewRecorder(0),
	}
	e.sched = interval.New(e.dev, settings, interval.Options{
		Clock:      e.clk,
		Dispatcher: interval.Inline,
		Notifier:   e.notes,
		Store:      e.store,
	})
	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewSchedulerChecker(e.sched))
	e.srv = New(Deps{
		Controller:    e.sched,
		Health:        hm,
		Notifications: e.notes,
		RateLimit:     rateLimit,
		Audit:         audit.New(zerolog.New(&e.audit)),
	})
	t.Cleanup(func() { e.sched.StopCampaign() })
	return e
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatus_Idle(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)

	w := e.do(t, http.MethodGet, "/api/v1/intervals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	st := decode[StatusResponse](t, w)
	assert.Equal(t, "idle", st.State)
	assert.False(t, st.Enabled)
	assert.Nil(t, st.StartTime)
	assert.Equal(t, "1m0s", st.CycleLength)
	assert.Equal(t, "10s", st.Settings.StillDuration)
}

func TestStartAndStop(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)

	w := e.do(t, http.MethodPost, "/api/v1/intervals/start", "")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	st := decode[StatusResponse](t, w)
	assert.True(t, st.Enabled)
	assert.Equal(t, "action", st.State)
	assert.Equal(t, "stills_only", st.Phase)
	assert.NotEmpty(t, st.CampaignID)
	require.NotNil(t, st.StartTime)

	e.clk.Advance(5 * time.Second)
	st = decode[StatusResponse](t, e.do(t, http.MethodGet, "/api/v1/intervals", ""))
	assert.Equal(t, "5s", st.TotalRunningTime)
	assert.Equal(t, 6, e.dev.Counters().Stills)

	w = e.do(t, http.MethodPost, "/api/v1/intervals/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_running", decode[errorResponse](t, w).Error)

	w = e.do(t, http.MethodPost, "/api/v1/intervals/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Stopped bool           `json:"stopped"`
		Status  StatusResponse `json:"status"`
	}](t, w)
	assert.True(t, body.Stopped)
	assert.Equal(t, "idle", body.Status.State)

	w = e.do(t, http.MethodPost, "/api/v1/intervals/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stopped":false`)
}

func TestStart_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings func() interval.Settings
		prep     func(*testEnv)
		detail   string
	}{
		{
			name: "no action",
			settings: func() interval.Settings {
				s := defaultSettings()
				s.WillTakeStills = false
				return s
			},
			detail: interval.ErrNoActionSelected.Error(),
		},
		{
			name: "zero cycle",
			settings: func() interval.Settings {
				return interval.Settings{WillTakeStills: true}
			},
			detail: interval.ErrZeroCycleLength.Error(),
		},
		{
			name: "simultaneous 4k",
			settings: func() interval.Settings {
				s := defaultSettings()
				s.WillRecordVideo = true
				s.DurationToRecord = 10 * time.Second
				s.SimultaneousStillsAndVideo = true
				return s
			},
			prep:   func(e *testEnv) { e.dev.Set4K(true) },
			detail: interval.ErrSimultaneous4K.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, tt.settings(), 30)
			if tt.prep != nil {
				tt.prep(e)
			}
			w := e.do(t, http.MethodPost, "/api/v1/intervals/start", "")
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decode[errorResponse](t, w)
			assert.Equal(t, "invalid_configuration", resp.Error)
			assert.Equal(t, tt.detail, resp.Detail)
			assert.Equal(t, interval.StateIdle, e.sched.Status().State)
		})
	}
}

func TestSettings_GetAndPatch(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)

	got := decode[SettingsResponse](t, e.do(t, http.MethodGet, "/api/v1/intervals/settings", ""))
	assert.Equal(t, "50s", got.IdleDuration)
	assert.True(t, got.StillsFirst)

	w := e.do(t, http.MethodPatch, "/api/v1/intervals/settings",
		`{"still_duration":"4s","still_period":"9s","will_record_video":true,"duration_to_record":"20s","number_of_cycles":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[SettingsResponse](t, w)
	assert.Equal(t, "4s", got.StillDuration)
	assert.Equal(t, "4s", got.StillPeriod, "period clamped to still duration")
	assert.Equal(t, "20s", got.DurationToRecord)
	assert.Equal(t, 3, got.NumberOfCycles)
	assert.True(t, got.WillRecordVideo)
	assert.Equal(t, "1m14s", got.CycleLength)

	stored, err := e.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4s", stored[interval.KeyStillDuration])
	assert.Equal(t, "3", stored[interval.KeyNumberOfCycles])
}

func TestSettings_PatchRejectsBadInput(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)
	before := e.sched.Settings()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"idle_duration":`, "invalid_request"},
		{"unknown field", `{"idle":"5s"}`, "invalid_request"},
		{"bad duration", `{"idle_duration":"soon","still_duration":"3s"}`, "invalid_settings"},
		{"negative duration", `{"wait_to_start":"-1s"}`, "invalid_settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPatch, "/api/v1/intervals/settings", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[errorResponse](t, w).Error)
		})
	}
	assert.Equal(t, before, e.sched.Settings(), "rejected patches change nothing")
	assert.Zero(t, e.store.Saves())
}

func TestSettings_PatchRejectedWhileRunning(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)
	require.Equal(t, http.StatusAccepted, e.do(t, http.MethodPost, "/api/v1/intervals/start", "").Code)
	before := e.sched.Settings()

	w := e.do(t, http.MethodPatch, "/api/v1/intervals/settings", `{"will_take_stills":false}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "invalid_configuration", resp.Error)
	assert.Equal(t, interval.ErrNoActionSelected.Error(), resp.Detail)

	assert.Equal(t, before, e.sched.Settings())
	assert.True(t, e.sched.Status().Enabled)

	var last struct {
		Event  string `json:"event"`
		Result string `json:"result"`
	}
	lines := strings.Split(strings.TrimSpace(e.audit.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "intervals.settings", last.Event)
	assert.Equal(t, "rejected", last.Result)
}

type failingStore struct{ *store.MemoryStore }

func (failingStore) Save(context.Context, map[string]string) error { return errors.New("disk gone") }

func TestSettings_PatchPersistFailure(t *testing.T) {
	sched := interval.New(capture.NewSimulated(), defaultSettings(), interval.Options{
		Clock:      clock.NewFake(time.Now()),
		Dispatcher: interval.Inline,
		Store:      failingStore{store.NewMemoryStore()},
	})
	srv := New(Deps{Controller: sched})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/intervals/settings", strings.NewReader(`{"idle_duration":"1m"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, time.Minute, sched.Settings().IdleDuration, "applied in memory")
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)
	e.do(t, http.MethodPost, "/api/v1/intervals/start", "")
	e.do(t, http.MethodPost, "/api/v1/intervals/stop", "")

	msgs := decode[[]notify.Message](t, e.do(t, http.MethodGet, "/api/v1/notifications", ""))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Intervals started", msgs[0].Text)
	assert.Equal(t, "Intervals stopped", msgs[1].Text)
}

func TestAuditTrail(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)
	e.do(t, http.MethodPost, "/api/v1/intervals/start", "")
	e.do(t, http.MethodPatch, "/api/v1/intervals/settings", `{"number_of_cycles": 4}`)
	e.do(t, http.MethodPost, "/api/v1/intervals/stop", "")
	e.do(t, http.MethodPost, "/api/v1/intervals/stop", "")

	type entry struct {
		Event     string `json:"event"`
		Actor     string `json:"actor"`
		Result    string `json:"result"`
		RequestID string `json:"request_id"`
	}
	var got []entry
	sc := bufio.NewScanner(&e.audit)
	for sc.Scan() {
		var en entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &en))
		got = append(got, en)
	}
	require.Len(t, got, 4)
	assert.Equal(t, "intervals.start", got[0].Event)
	assert.Equal(t, "192.0.2.1", got[0].Actor)
	assert.NotEmpty(t, got[0].RequestID)
	assert.Equal(t, "intervals.settings", got[1].Event)
	assert.Equal(t, "success", got[2].Result)
	assert.Equal(t, "noop", got[3].Result)
}

func TestMutatingRoutesRateLimited(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 2)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/v1/intervals/stop", "").Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/v1/intervals/stop", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, http.MethodPost, "/api/v1/intervals/stop", "").Code)

	// reads are not limited
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/intervals", "").Code)
	}
}

func TestProbesAndMetrics(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/healthz", "").Code)

	w := e.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intervals"`)

	w = e.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seacam_interval_state")
}

func TestUnknownRoutes(t *testing.T) {
	e := newTestEnv(t, defaultSettings(), 30)

	w := e.do(t, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, w).Error)

	w = e.do(t, http.MethodDelete, "/api/v1/intervals", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
