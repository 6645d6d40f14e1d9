package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/repository/testdb"
	"FinPulse/internal/usecase"
	applogger "FinPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHistory struct {
	series map[string][]models.PricePoint
	err    error
}

func (h staticHistory) DailyCloses(_ context.Context, ticker string) ([]models.PricePoint, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.series[ticker], nil
}

// flatForecaster predicts the last value forever.
type flatForecaster struct{ calls int }

func (f *flatForecaster) FitPredict(_ context.Context, series []models.PricePoint, horizon int) ([]float64, error) {
	f.calls++
	out := make([]float64, horizon)
	for i := range out {
		out[i] = series[len(series)-1].Price
	}
	return out, nil
}

func dailySeries(n int, last time.Time) []models.PricePoint {
	out := make([]models.PricePoint, n)
	for i := range out {
		out[i] = models.PricePoint{Time: last.AddDate(0, 0, i-n+1), Price: float64(100 + i)}
	}
	return out
}

func TestForecastDatesFollowLastClose(t *testing.T) {
	ctx := context.Background()
	store := testdb.New(t)
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	hist := staticHistory{series: map[string][]models.PricePoint{"TCS.NS": dailySeries(30, last)}}
	job := usecase.NewForecastJob(hist, &flatForecaster{}, []string{"TCS.NS"}, 7, 2, nopMetrics{}, applogger.Nop())

	preds, err := job.Forecast(ctx, store, "TCS.NS")
	require.NoError(t, err)
	require.Len(t, preds, 7)
	for i, p := range preds {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.PredictionDate)
		assert.Equal(t, "129", p.PredictedPrice.String())
	}
}

func TestForecastReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	store := testdb.New(t)
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	hist := staticHistory{series: map[string][]models.PricePoint{"TCS.NS": dailySeries(10, last)}}
	job := usecase.NewForecastJob(hist, &flatForecaster{}, []string{"TCS.NS"}, 7, 2, nopMetrics{}, applogger.Nop())

	_, err := job.Forecast(ctx, store, "TCS.NS")
	require.NoError(t, err)
	_, err = job.Forecast(ctx, store, "TCS.NS")
	require.NoError(t, err)

	rows, err := store.Predictions(ctx, "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestForecastInsufficientHistoryKeepsStoredRows(t *testing.T) {
	ctx := context.Background()
	store := testdb.New(t)
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	hist := staticHistory{series: map[string][]models.PricePoint{
		"TCS.NS":      dailySeries(10, last),
		"RELIANCE.NS": dailySeries(1, last),
	}}
	f := &flatForecaster{}
	job := usecase.NewForecastJob(hist, f, []string{"TCS.NS", "RELIANCE.NS"}, 7, 2, nopMetrics{}, applogger.Nop())

	_, err := job.Forecast(ctx, store, "RELIANCE.NS")
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
	assert.Zero(t, f.calls)

	done, err := job.RunAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
}

func TestForecastHistoryFailureIsSourceError(t *testing.T) {
	store := testdb.New(t)
	job := usecase.NewForecastJob(staticHistory{err: errors.New("yahoo down")}, &flatForecaster{}, nil, 7, 2, nopMetrics{}, applogger.Nop())
	_, err := job.Forecast(context.Background(), store, "TCS.NS")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}
