// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_KeepsMostRecent(t *testing.T) {
	r := NewRecorder(2)
	r.Notify(SeverityInfo, "one")
	r.Notify(SeverityWarning, "two")
	r.Notify(SeverityError, "three")

	msgs := r.Messages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, []string{"three"}, r.Texts(SeverityError))
}

func TestThrottled_SuppressesRepeats(t *testing.T) {
	r := NewRecorder(0)
	th := NewThrottled(r, time.Hour)

	for i := 0; i < 5; i++ {
		th.Notify(SeverityWarning, "still failed")
	}
	th.Notify(SeverityWarning, "recording stop failed")

	assert.Equal(t, []string{"still failed", "recording stop failed"}, r.Texts(SeverityWarning))
	assert.Equal(t, 4, th.Dropped(SeverityWarning, "still failed"))
}

func TestThrottled_InfoPassesThrough(t *testing.T) {
	r := NewRecorder(0)
	th := NewThrottled(r, time.Hour)
	th.Notify(SeverityInfo, "cycle complete")
	th.Notify(SeverityInfo, "cycle complete")
	assert.Len(t, r.Texts(SeverityInfo), 2)
}

func TestMulti_SkipsNil(t *testing.T) {
	a, b := NewRecorder(0), NewRecorder(0)
	Multi{a, nil, b}.Notify(SeverityError, "boom")
	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}
