package usecase

import (
	"sync"
	"time"

	"FinPulse/pkg/util"
)

// DailyGate admits a job at most once per UTC calendar date.
type DailyGate struct {
	clock Clock

	mu      sync.Mutex
	lastRun time.Time
}

func NewDailyGate(clock Clock) *DailyGate {
	if clock == nil {
		clock = SystemClock()
	}
	return &DailyGate{clock: clock}
}

// Due reports whether the job has not yet run today.
func (g *DailyGate) Due() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun.IsZero() || !util.SameDate(g.clock.Now().UTC(), g.lastRun)
}

// MarkRun records that the job ran today.
func (g *DailyGate) MarkRun() {
	g.mu.Lock()
	g.lastRun = g.clock.Now().UTC()
	g.mu.Unlock()
}

// LastRun returns when MarkRun was last called; zero if never.
func (g *DailyGate) LastRun() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun
}
