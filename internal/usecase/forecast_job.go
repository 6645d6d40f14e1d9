package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	domsvc "FinPulse/internal/domain/service"
	applogger "FinPulse/pkg/logger"
	"FinPulse/pkg/util"

	"github.com/shopspring/decimal"
)

// ForecastJob fits daily closes and replaces the stored predictions per ticker.
type ForecastJob struct {
	history    domsvc.HistoryProvider
	forecaster domsvc.Forecaster
	tickers    []string
	horizon    int
	minHistory int
	metrics    domrepo.Metrics
	log        *applogger.Logger
}

func NewForecastJob(history domsvc.HistoryProvider, forecaster domsvc.Forecaster, tickers []string, horizon, minHistory int, metrics domrepo.Metrics, l *applogger.Logger) *ForecastJob {
	if minHistory < 2 {
		minHistory = 2
	}
	return &ForecastJob{
		history:    history,
		forecaster: forecaster,
		tickers:    tickers,
		horizon:    horizon,
		minHistory: minHistory,
		metrics:    metrics,
		log:        l,
	}
}

// Forecast predicts horizon days past the last close of ticker and replaces
// its stored predictions in one transaction.
func (j *ForecastJob) Forecast(ctx context.Context, store domrepo.Store, ticker string) ([]models.PricePrediction, error) {
	series, err := j.history.DailyCloses(ctx, ticker)
	if err != nil {
		return nil, models.NewSourceError(models.SourceYahoo, err)
	}
	preds, err := Predict(ctx, j.forecaster, ticker, series, j.horizon, j.minHistory)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := store.ReplacePredictions(ctx, ticker, preds); err != nil {
		return nil, err
	}
	j.metrics.RecordLatency("forecast_replace", time.Since(start).Seconds())
	j.metrics.RecordRows("price_predictions", ticker, len(preds))
	return preds, nil
}

// RunAll forecasts every configured ticker. Only a store failure stops the run.
func (j *ForecastJob) RunAll(ctx context.Context, store domrepo.Store) (int, error) {
	done := 0
	for _, ticker := range j.tickers {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		preds, err := j.Forecast(ctx, store, ticker)
		switch {
		case err == nil:
			done++
			j.log.Info("stored forecast", applogger.String("ticker", ticker), applogger.Int("points", len(preds)))
		case errors.Is(err, models.ErrStoreUnavailable):
			return done, err
		case errors.Is(err, models.ErrInsufficientHistory):
			j.log.Warn("not enough history to forecast", applogger.String("ticker", ticker), applogger.Error(err))
		default:
			j.metrics.RecordError("forecast")
			j.log.Error("forecast failed", applogger.String("ticker", ticker), applogger.Error(err))
		}
	}
	return done, nil
}

// Predict runs forecaster on series and dates the output on the calendar days
// following its last point.
func Predict(ctx context.Context, forecaster domsvc.Forecaster, ticker string, series []models.PricePoint, horizon, minHistory int) ([]models.PricePrediction, error) {
	if len(series) < minHistory {
		return nil, fmt.Errorf("%s: %w: have %d points, need %d", ticker, models.ErrInsufficientHistory, len(series), minHistory)
	}
	yhat, err := forecaster.FitPredict(ctx, series, horizon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	if len(yhat) != horizon {
		return nil, fmt.Errorf("%s: forecaster returned %d points, want %d", ticker, len(yhat), horizon)
	}

	dates := util.NextDates(series[len(series)-1].Time, horizon)
	preds := make([]models.PricePrediction, horizon)
	for i := range preds {
		preds[i] = models.PricePrediction{
			AssetTicker:    ticker,
			PredictionDate: dates[i],
			PredictedPrice: decimal.NewFromFloat(yhat[i]),
		}
	}
	return preds, nil
}
