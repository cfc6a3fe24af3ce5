// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolderReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nlogLevel: info\n")
	loader := NewLoader(path, "test")

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader)

	updates := make(chan AppConfig, 1)
	h.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("dataDir: "+dir+"\nlogLevel: debug\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, "debug", h.Get().LogLevel)
	select {
	case got := <-updates:
		assert.Equal(t, "debug", got.LogLevel)
	default:
		t.Fatal("listener not notified")
	}
}

func TestConfigHolderReloadKeepsOldOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nlogLevel: warn\n")
	loader := NewLoader(path, "test")

	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("dataDir: "+dir+"\nlogLevel: shouting\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "warn", h.Get().LogLevel)
}

func TestConfigHolderListenerFullDoesNotBlock(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader)

	full := make(chan AppConfig)
	h.RegisterListener(full)
	require.NoError(t, h.Reload(context.Background()))
}

func TestConfigHolderWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dataDir: "+dir+"\nlogLevel: info\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("dataDir: "+dir+"\nlogLevel: error\n"), 0o600))

	require.Eventually(t, func() bool {
		return h.Get().LogLevel == "error"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestConfigHolderWatchWithoutFile(t *testing.T) {
	h := NewConfigHolder(Defaults(), NewLoader("", "test"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Watch(ctx))
}
