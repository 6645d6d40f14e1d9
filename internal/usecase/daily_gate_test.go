package usecase_test

import (
	"testing"
	"time"

	"FinPulse/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestDailyGateOncePerCalendarDate(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC)}
	g := usecase.NewDailyGate(clock)

	assert.True(t, g.Due())
	g.MarkRun()
	assert.False(t, g.Due())

	clock.Set(time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC))
	assert.False(t, g.Due())

	clock.Set(time.Date(2024, 6, 2, 0, 0, 1, 0, time.UTC))
	assert.True(t, g.Due())
	g.MarkRun()
	assert.False(t, g.Due())
}

func TestDailyGateUsesUTCDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 23:00 UTC on June 1 is already June 2 in IST.
	clock := &fixedClock{t: time.Date(2024, 6, 2, 4, 30, 0, 0, ist)}
	g := usecase.NewDailyGate(clock)
	g.MarkRun()
	assert.Equal(t, time.UTC, g.LastRun().Location())

	// 05:00 IST on June 2 is still June 1 in UTC.
	clock.Set(time.Date(2024, 6, 2, 5, 0, 0, 0, ist))
	assert.False(t, g.Due())

	// 06:00 IST on June 2 is 00:30 UTC on June 2.
	clock.Set(time.Date(2024, 6, 2, 6, 0, 0, 0, ist))
	assert.True(t, g.Due())
}
