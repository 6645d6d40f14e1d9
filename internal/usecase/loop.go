package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	domrepo "FinPulse/internal/domain/repository"
	applogger "FinPulse/pkg/logger"
)

// CycleFunc is one unit of periodic work.
type CycleFunc func(ctx context.Context) error

// Loop runs a cycle, then sleeps interval measured from the end of the cycle.
// A failing or panicking cycle is logged and the loop carries on.
type Loop struct {
	name     string
	interval time.Duration
	cycle    CycleFunc
	metrics  domrepo.Metrics
	log      *applogger.Logger
}

func NewLoop(name string, interval time.Duration, cycle CycleFunc, metrics domrepo.Metrics, l *applogger.Logger) *Loop {
	return &Loop{name: name, interval: interval, cycle: cycle, metrics: metrics, log: l.With(applogger.String("loop", name))}
}

// Run blocks until ctx is cancelled. The in-flight cycle finishes first.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("loop started", applogger.Duration("interval", l.interval))
	for {
		if ctx.Err() != nil {
			l.log.Info("loop stopped")
			return nil
		}
		if err := l.RunOnce(ctx); err != nil {
			l.log.Error("cycle failed", applogger.Error(err))
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Info("loop stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce runs a single cycle, converting a panic into an error.
func (l *Loop) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
			l.log.Error("cycle panicked", applogger.String("stack", string(debug.Stack())))
		}
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		l.metrics.RecordCycle(l.name, outcome)
	}()

	start := time.Now()
	err = l.cycle(ctx)
	l.metrics.RecordLatency("cycle_"+l.name, time.Since(start).Seconds())
	return err
}
