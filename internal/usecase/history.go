package usecase

import (
	"context"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
)

type GetHistoryParams struct {
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetHistoryResult struct {
	Ticker string                    `json:"ticker"`
	From   time.Time                 `json:"from"`
	To     time.Time                 `json:"to"`
	Count  int                       `json:"count"`
	Points []models.PriceObservation `json:"points"`
}

// History returns the stored series of one ticker for plotting.
func (d *Dashboard) History(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.Ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	if p.To.IsZero() {
		p.To = time.Now().UTC()
	}
	if p.From.IsZero() {
		p.From = p.To.AddDate(0, 0, -30)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.PriceHistory(ctx, p.Ticker, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	return &GetHistoryResult{
		Ticker: p.Ticker,
		From:   p.From,
		To:     p.To,
		Count:  len(rows),
		Points: rows,
	}, nil
}
