package usecase_test

import (
	"context"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/repository"
	"FinPulse/internal/repository/testdb"
	"FinPulse/internal/usecase"
	applogger "FinPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalysis(t *testing.T, clock usecase.Clock, f *flatForecaster) (*usecase.AnalysisCycle, *repository.GormStore) {
	t.Helper()
	store := testdb.New(t)
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	hist := staticHistory{series: map[string][]models.PricePoint{"TCS.NS": dailySeries(10, last)}}
	l := applogger.Nop()

	arb := usecase.NewArbitrageDetector([]string{"BTCINR"}, 5*time.Minute, 0.05, clock, nil, nopMetrics{}, l)
	sent := usecase.NewSentimentJob(scorerFunc(func(string) (float64, error) { return 0.1, nil }), nopMetrics{}, l)
	fc := usecase.NewForecastJob(hist, f, []string{"TCS.NS"}, 7, 2, nopMetrics{}, l)
	cycle := usecase.NewAnalysisCycle(&repository.StaticConnector{Store: store}, arb, sent, fc, usecase.NewDailyGate(clock), nopMetrics{}, l)
	return cycle, store
}

func TestAnalysisForecastsOncePerDay(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{t: time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)}
	f := &flatForecaster{}
	cycle, store := newAnalysis(t, clock, f)

	_, err := store.InsertNewsIfAbsent(ctx, []models.NewsHeadline{{AssetTicker: "TCS", Headline: "TCS news"}})
	require.NoError(t, err)

	r, err := cycle.Run(ctx)
	require.NoError(t, err)
	assert.True(t, r.ForecastRan)
	assert.Equal(t, 1, r.Forecasted)
	assert.Equal(t, 1, r.Scored)

	clock.Set(clock.Now().Add(10 * time.Minute))
	r, err = cycle.Run(ctx)
	require.NoError(t, err)
	assert.False(t, r.ForecastRan)
	assert.Equal(t, 1, f.calls)

	clock.Set(time.Date(2024, 6, 30, 0, 1, 0, 0, time.UTC))
	r, err = cycle.Run(ctx)
	require.NoError(t, err)
	assert.True(t, r.ForecastRan)
	assert.Equal(t, 2, f.calls)
}

func TestAnalysisStoreDownLeavesGateOpen(t *testing.T) {
	clock := &fixedClock{t: time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)}
	l := applogger.Nop()
	gate := usecase.NewDailyGate(clock)
	cycle := usecase.NewAnalysisCycle(downConnector{},
		usecase.NewArbitrageDetector(nil, 5*time.Minute, 0.05, clock, nil, nopMetrics{}, l),
		usecase.NewSentimentJob(scorerFunc(func(string) (float64, error) { return 0, nil }), nopMetrics{}, l),
		usecase.NewForecastJob(staticHistory{}, &flatForecaster{}, nil, 7, 2, nopMetrics{}, l),
		gate, nopMetrics{}, l)

	_, err := cycle.Run(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.True(t, gate.Due())
}

func TestAnalysisRestartRunsForecastAgainSameDay(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{t: time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)}
	store := testdb.New(t)
	conn := &repository.StaticConnector{Store: store}
	f := &flatForecaster{}
	hist := staticHistory{series: map[string][]models.PricePoint{"TCS.NS": dailySeries(10, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC))}}
	l := applogger.Nop()

	start := func() *usecase.AnalysisCycle {
		return usecase.NewAnalysisCycle(conn,
			usecase.NewArbitrageDetector(nil, 5*time.Minute, 0.05, clock, nil, nopMetrics{}, l),
			usecase.NewSentimentJob(scorerFunc(func(string) (float64, error) { return 0, nil }), nopMetrics{}, l),
			usecase.NewForecastJob(hist, f, []string{"TCS.NS"}, 7, 2, nopMetrics{}, l),
			usecase.NewDailyGate(clock), nopMetrics{}, l)
	}

	first := start()
	_, err := first.Run(ctx)
	require.NoError(t, err)
	r, err := first.Run(ctx)
	require.NoError(t, err)
	assert.False(t, r.ForecastRan)

	r, err = start().Run(ctx)
	require.NoError(t, err)
	assert.True(t, r.ForecastRan)
	assert.Equal(t, 2, f.calls)

	preds, err := store.Predictions(ctx, "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, preds, 7)
}
