package analytics

import (
	"context"
	"errors"

	"FinPulse/internal/domain/models"
	domsvc "FinPulse/internal/domain/service"
	applogger "FinPulse/pkg/logger"
)

// FallbackForecaster uses the in-process model when the primary fails.
type FallbackForecaster struct {
	primary   domsvc.Forecaster
	secondary domsvc.Forecaster
	log       *applogger.Logger
}

func NewFallbackForecaster(primary, secondary domsvc.Forecaster, l *applogger.Logger) *FallbackForecaster {
	return &FallbackForecaster{primary: primary, secondary: secondary, log: l}
}

func (f *FallbackForecaster) FitPredict(ctx context.Context, series []models.PricePoint, horizon int) ([]float64, error) {
	out, err := f.primary.FitPredict(ctx, series, horizon)
	if err == nil || errors.Is(err, models.ErrInsufficientHistory) || ctx.Err() != nil {
		return out, err
	}
	f.log.Warn("forecast service failed, using local model", applogger.Error(err))
	return f.secondary.FitPredict(ctx, series, horizon)
}

// FallbackScorer uses the local VADER scorer when the primary fails.
type FallbackScorer struct {
	primary   domsvc.SentimentScorer
	secondary domsvc.SentimentScorer
	log       *applogger.Logger
}

func NewFallbackScorer(primary, secondary domsvc.SentimentScorer, l *applogger.Logger) *FallbackScorer {
	return &FallbackScorer{primary: primary, secondary: secondary, log: l}
}

func (s *FallbackScorer) Polarity(ctx context.Context, text string) (float64, error) {
	v, err := s.primary.Polarity(ctx, text)
	if err == nil || ctx.Err() != nil {
		return v, err
	}
	s.log.Warn("sentiment service failed, using vader", applogger.Error(err))
	return s.secondary.Polarity(ctx, text)
}
