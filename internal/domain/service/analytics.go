package service

import (
	"context"

	"FinPulse/internal/domain/models"
)

// SentimentScorer returns the polarity of text in [-1, 1].
type SentimentScorer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// Forecaster fits series and returns horizon predicted values following its last point.
type Forecaster interface {
	FitPredict(ctx context.Context, series []models.PricePoint, horizon int) ([]float64, error)
}

// HistoryProvider returns up to one year of daily closes for a ticker, oldest first.
// Bars without a close are already dropped.
type HistoryProvider interface {
	DailyCloses(ctx context.Context, ticker string) ([]models.PricePoint, error)
}
