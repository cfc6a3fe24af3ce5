// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFake_FiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var order []string

	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	c.AfterFunc(3*time.Second, func() { order = append(order, "d") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, epoch.Add(2*time.Second), c.Now())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
	assert.Equal(t, 0, c.Pending())
}

func TestFake_CallbackSeesDeadlineAsNow(t *testing.T) {
	c := NewFake(epoch)
	var seen time.Time
	c.AfterFunc(1500*time.Millisecond, func() { seen = c.Now() })
	c.Advance(10 * time.Second)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), seen)
}

func TestFake_StopPreventsFire(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, tm.Stop())
	assert.False(t, tm.Stop(), "second stop reports not running")

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFake_TimersRegisteredWhileAdvancing(t *testing.T) {
	c := NewFake(epoch)
	var hits []time.Duration
	c.AfterFunc(time.Second, func() {
		hits = append(hits, c.Now().Sub(epoch))
		c.AfterFunc(time.Second, func() { hits = append(hits, c.Now().Sub(epoch)) })
	})

	c.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, hits)
}

func TestEvery_RepeatsUntilStopped(t *testing.T) {
	c := NewFake(epoch)
	var n atomic.Int32
	tk := Every(c, time.Second, func() { n.Add(1) })

	c.Advance(3500 * time.Millisecond)
	assert.Equal(t, int32(3), n.Load())

	assert.True(t, tk.Stop())
	assert.False(t, tk.Stop())
	c.Advance(10 * time.Second)
	assert.Equal(t, int32(3), n.Load())
	assert.Equal(t, 0, c.Pending())
}

func TestEvery_StopFromCallback(t *testing.T) {
	c := NewFake(epoch)
	var tk *Ticker
	n := 0
	tk = Every(c, time.Second, func() {
		n++
		if n == 2 {
			tk.Stop()
		}
	})
	c.Advance(10 * time.Second)
	assert.Equal(t, 2, n)
}

func TestReal_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
