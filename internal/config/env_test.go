// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvHelpers(t *testing.T) {
	const key = "SEACAM_TEST_VALUE"

	t.Run("unset uses default", func(t *testing.T) {
		assert.Equal(t, "dflt", ParseString(key, "dflt"))
		assert.Equal(t, 7, ParseInt(key, 7))
		assert.Equal(t, time.Second, ParseDuration(key, time.Second))
		assert.True(t, ParseBool(key, true))
	})

	t.Run("empty uses default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Equal(t, "dflt", ParseString(key, "dflt"))
		assert.Equal(t, 7, ParseInt(key, 7))
	})

	t.Run("valid values", func(t *testing.T) {
		t.Setenv(key, "42")
		assert.Equal(t, "42", ParseString(key, "dflt"))
		assert.Equal(t, 42, ParseInt(key, 7))

		t.Setenv(key, "90s")
		assert.Equal(t, 90*time.Second, ParseDuration(key, time.Second))

		t.Setenv(key, "YES")
		assert.True(t, ParseBool(key, false))
		t.Setenv(key, "0")
		assert.False(t, ParseBool(key, true))
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(key, "many")
		assert.Equal(t, 7, ParseInt(key, 7))
		assert.Equal(t, time.Second, ParseDuration(key, time.Second))
		assert.True(t, ParseBool(key, true))
	})
}
