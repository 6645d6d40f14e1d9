package analytics

import (
	"context"
	"fmt"
	"math"

	"FinPulse/internal/domain/models"
	domsvc "FinPulse/internal/domain/service"
)

// HoltForecaster is Holt's linear exponential smoothing. The smoothing
// parameters are picked by grid search on one-step-ahead squared error.
type HoltForecaster struct{}

func NewHoltForecaster() *HoltForecaster { return &HoltForecaster{} }

func (HoltForecaster) FitPredict(ctx context.Context, series []models.PricePoint, horizon int) ([]float64, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("holt: %w: %d points", models.ErrInsufficientHistory, len(series))
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("holt: horizon must be positive")
	}
	ys := make([]float64, len(series))
	for i, p := range series {
		ys[i] = p.Price
	}

	bestSSE := math.Inf(1)
	var bestLevel, bestTrend float64
	for a := 1; a <= 9; a++ {
		for b := 1; b <= 9; b++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			level, trend, sse := holtFit(ys, float64(a)/10, float64(b)/10)
			if sse < bestSSE {
				bestSSE, bestLevel, bestTrend = sse, level, trend
			}
		}
	}

	out := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		out[h-1] = bestLevel + float64(h)*bestTrend
	}
	return out, nil
}

func holtFit(ys []float64, alpha, beta float64) (level, trend, sse float64) {
	level = ys[0]
	trend = ys[1] - ys[0]
	for _, y := range ys[1:] {
		pred := level + trend
		sse += (y - pred) * (y - pred)
		prevLevel := level
		level = alpha*y + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	return level, trend, sse
}

var _ domsvc.Forecaster = HoltForecaster{}
