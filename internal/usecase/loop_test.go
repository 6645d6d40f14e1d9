package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinPulse/internal/usecase"
	applogger "FinPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopSurvivesPanicsAndErrors(t *testing.T) {
	var n atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := &countingMetrics{}
	loop := usecase.NewLoop("test", time.Millisecond, func(context.Context) error {
		switch n.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("store unavailable")
		case 3:
			cancel()
		}
		return nil
	}, m, applogger.Nop())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, int32(3), n.Load())
	assert.Equal(t, 2, m.count("test/failed"))
	assert.Equal(t, 1, m.count("test/ok"))
}

func TestLoopCancelEndsSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	loop := usecase.NewLoop("slow", time.Hour, func(context.Context) error {
		n.Add(1)
		return nil
	}, nopMetrics{}, applogger.Nop())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not interrupt the sleep")
	}
	assert.Equal(t, int32(1), n.Load())
}

func TestRunOnceConvertsPanic(t *testing.T) {
	loop := usecase.NewLoop("once", time.Second, func(context.Context) error { panic("nil map") }, nopMetrics{}, applogger.Nop())
	err := loop.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
}
