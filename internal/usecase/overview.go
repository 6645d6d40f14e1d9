package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"FinPulse/internal/domain/models"
)

const overviewWindow = 24 * time.Hour

// Overview fetches the latest quote per source, the stored predictions and
// the on-demand forecast for ticker concurrently.
func (d *Dashboard) Overview(ctx context.Context, ticker string) (*models.AssetOverview, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}

	ctx, cancel := context.WithTimeout(ctx, d.overviewTimeout())
	defer cancel()

	res := &models.AssetOverview{
		Ticker:    ticker,
		Timestamp: time.Now().UTC(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := d.latestPerSource(ctx, ticker)
		ch <- item{"latest", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := d.storedPredictions(ctx, ticker)
		ch <- item{"predictions", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := d.Forecast(ctx, ticker)
		ch <- item{"forecast", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "latest":
			res.Latest = it.val.([]models.PriceObservation)
		case "predictions":
			res.Predictions = it.val.([]models.PricePrediction)
		case "forecast":
			v := it.val.(models.ForecastResponse)
			res.Forecast = &v
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (d *Dashboard) overviewTimeout() time.Duration {
	if d.timeout > 0 {
		return d.timeout
	}
	return 10 * time.Second
}

func (d *Dashboard) latestPerSource(ctx context.Context, ticker string) ([]models.PriceObservation, error) {
	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.RecentPrices(ctx, ticker, time.Now().UTC().Add(-overviewWindow))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []models.PriceObservation
	for _, r := range rows {
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

func (d *Dashboard) storedPredictions(ctx context.Context, ticker string) ([]models.PricePrediction, error) {
	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.Predictions(ctx, ticker)
}
