// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestWithComponent_AttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "seacam-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("interval.scheduler")
	l.Info().Str(FieldEvent, "campaign.start").Msg("started")

	entry := decodeLast(t, &buf)
	assert.Equal(t, "seacam-test", entry["service"])
	assert.Equal(t, "v0.0.1", entry["version"])
	assert.Equal(t, "interval.scheduler", entry[FieldComponent])
	assert.Equal(t, "campaign.start", entry[FieldEvent])
}

func TestWithComponentFromContext_AddsCorrelation(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	ctx := ContextWithCampaignID(context.Background(), "c-1")
	ctx = ContextWithRequestID(ctx, "r-1")
	l := WithComponentFromContext(ctx, "api")
	l.Info().Msg("hello")

	entry := decodeLast(t, &buf)
	assert.Equal(t, "c-1", entry[FieldCampaignID])
	assert.Equal(t, "r-1", entry[FieldRequestID])
	assert.Equal(t, "api", entry[FieldComponent])
}

func TestWithContext_NoFieldsReturnsSameLogger(t *testing.T) {
	l := zerolog.Nop()
	got := WithContext(context.Background(), l)
	assert.Equal(t, l, got)
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
