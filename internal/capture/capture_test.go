// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"", FormatJPEG, false},
		{"JPEG", FormatJPEG, false},
		{" raw ", FormatRAW, false},
		{"jpeg+raw", FormatJPEGRAW, false},
		{"tiff", "", true},
	}
	for _, tt := range tests {
		got, err := ParseImageFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestMinimumStillPeriod_OrderedByCost(t *testing.T) {
	assert.Less(t, MinimumStillPeriod(FormatJPEG), MinimumStillPeriod(FormatRAW))
	assert.Less(t, MinimumStillPeriod(FormatRAW), MinimumStillPeriod(FormatJPEGRAW))
	assert.Equal(t, 500*time.Millisecond, MinimumStillPeriod(""))
}

func TestSimulated_RecordingLifecycle(t *testing.T) {
	dev := NewSimulated()
	ctx := context.Background()

	rec, known := dev.IsRecording()
	assert.False(t, rec)
	assert.True(t, known)

	require.NoError(t, dev.StartRecording(ctx))
	require.NoError(t, dev.TakeStill(ctx))
	require.NoError(t, dev.StopRecording(ctx))
	require.NoError(t, dev.StopRecording(ctx))

	c := dev.Counters()
	assert.Equal(t, Counters{Stills: 1, RecordStarts: 1, RecordStops: 1}, c)
}

func TestSimulated_InjectedFailures(t *testing.T) {
	dev := NewSimulated()
	boom := errors.New("sensor timeout")
	dev.FailStills(boom)
	assert.ErrorIs(t, dev.TakeStill(context.Background()), boom)

	dev.SetBusy(true)
	assert.False(t, dev.CanTakeStill())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, dev.StartRecording(ctx), context.Canceled)
}

func TestGuarded_BlocksBelowFloor(t *testing.T) {
	dev := NewSimulated()
	free := uint64(10 << 20)
	g := NewGuarded(dev, "/media", 50<<20).WithFreeSpaceFunc(func(string) (uint64, error) { return free, nil })

	err := g.TakeStill(context.Background())
	assert.ErrorIs(t, err, ErrLowStorage)
	assert.ErrorIs(t, g.StartRecording(context.Background()), ErrLowStorage)
	assert.Equal(t, 0, dev.Counters().Stills)

	free = 100 << 20
	require.NoError(t, g.TakeStill(context.Background()))
	assert.Equal(t, 1, dev.Counters().Stills)
}

func TestGuarded_ProbeErrorDoesNotBlock(t *testing.T) {
	dev := NewSimulated()
	g := NewGuarded(dev, "/media", 1).WithFreeSpaceFunc(func(string) (uint64, error) {
		return 0, errors.New("no such volume")
	})
	require.NoError(t, g.TakeStill(context.Background()))
}

func TestFreeSpace_TempDir(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, free, uint64(0))
}
