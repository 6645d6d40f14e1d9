package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	domsvc "FinPulse/internal/domain/service"
	"FinPulse/internal/service/cache"
	applogger "FinPulse/pkg/logger"
	"FinPulse/pkg/util"
)

// ErrRecomputeLimited means a cache miss was not recomputed because the
// ticker's recompute budget is spent.
var ErrRecomputeLimited = errors.New("forecast recompute rate limited")

// Allower is a keyed rate limiter.
type Allower interface {
	Allow(key string) bool
}

// ForecastWarning is shown when no forecast can be produced for asset.
func ForecastWarning(asset string) string {
	return fmt.Sprintf("Could not generate a forecast for %s. Please ensure your data harvester script is running and has collected enough data.", asset)
}

// Dashboard serves the read side: on-demand forecasts over price_data plus
// the stored tables.
type Dashboard struct {
	connector  domrepo.Connector
	forecaster domsvc.Forecaster
	cache      cache.BytesCache
	limiter    Allower
	assets     []string
	horizon    int
	minHistory int
	ttl        time.Duration
	timeout    time.Duration
	log        *applogger.Logger
}

type DashboardOptions struct {
	Assets     []string
	Horizon    int
	MinHistory int
	CacheTTL   time.Duration
	// Timeout bounds an overview request.
	Timeout time.Duration
}

func NewDashboard(connector domrepo.Connector, forecaster domsvc.Forecaster, c cache.BytesCache, limiter Allower, opts DashboardOptions, l *applogger.Logger) *Dashboard {
	if opts.Horizon <= 0 {
		opts.Horizon = 7
	}
	if opts.MinHistory < 2 {
		opts.MinHistory = 2
	}
	return &Dashboard{
		connector:  connector,
		forecaster: forecaster,
		cache:      c,
		limiter:    limiter,
		assets:     opts.Assets,
		horizon:    opts.Horizon,
		minHistory: opts.MinHistory,
		ttl:        opts.CacheTTL,
		timeout:    opts.Timeout,
		log:        l,
	}
}

func (d *Dashboard) Assets() []string { return d.assets }

// Forecast returns the cached on-demand forecast for ticker, computing it on
// a miss. A ticker with no usable history yields a response carrying only
// the warning; failures are not cached.
func (d *Dashboard) Forecast(ctx context.Context, ticker string) (models.ForecastResponse, error) {
	resp := models.ForecastResponse{Ticker: ticker, Forecast: []models.ForecastPoint{}}

	store, err := d.connector.Connect(ctx)
	if err != nil {
		return resp, err
	}
	stored, err := store.Predictions(ctx, ticker)
	if err != nil {
		return resp, err
	}
	resp.Stored = stored

	key := "forecast:" + ticker
	if b, ok, err := d.cache.GetBytes(ctx, key); err != nil {
		d.log.Warn("forecast cache read failed", applogger.String("ticker", ticker), applogger.Error(err))
	} else if ok && json.Unmarshal(b, &resp.Forecast) == nil {
		return resp, nil
	}

	if d.limiter != nil && !d.limiter.Allow(ticker) {
		return resp, ErrRecomputeLimited
	}

	points, err := d.compute(ctx, store, ticker)
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) || ctx.Err() != nil {
			return resp, err
		}
		d.log.Warn("on-demand forecast failed", applogger.String("ticker", ticker), applogger.Error(err))
		resp.Warning = ForecastWarning(ticker)
		return resp, nil
	}
	resp.Forecast = points

	if b, err := json.Marshal(points); err == nil {
		if err := d.cache.SetBytes(ctx, key, b, d.ttl); err != nil {
			d.log.Warn("forecast cache write failed", applogger.String("ticker", ticker), applogger.Error(err))
		}
	}
	return resp, nil
}

func (d *Dashboard) compute(ctx context.Context, store domrepo.Store, ticker string) ([]models.ForecastPoint, error) {
	rows, err := store.PriceHistory(ctx, ticker, time.Time{}, time.Now().UTC(), 0)
	if err != nil {
		return nil, err
	}
	preds, err := Predict(ctx, d.forecaster, ticker, DailySeries(rows), d.horizon, d.minHistory)
	if err != nil {
		return nil, err
	}
	out := make([]models.ForecastPoint, len(preds))
	for i, p := range preds {
		price, _ := p.PredictedPrice.Float64()
		out[i] = models.ForecastPoint{Date: p.PredictionDate.Format(util.DateLayout), Price: price}
	}
	return out, nil
}

// DailySeries reduces rows (oldest first) to the last price of each UTC
// calendar date.
func DailySeries(rows []models.PriceObservation) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(rows))
	for _, r := range rows {
		day := util.CalendarDate(r.Timestamp.UTC())
		price, _ := r.Price.Float64()
		if n := len(out); n > 0 && out[n-1].Time.Equal(day) {
			out[n-1].Price = price
			continue
		}
		out = append(out, models.PricePoint{Time: day, Price: price})
	}
	return out
}

func (d *Dashboard) Opportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.LatestOpportunities(ctx, limit)
}

// OpportunitiesAfter feeds the push stream.
func (d *Dashboard) OpportunitiesAfter(ctx context.Context, afterID uint64, limit int) ([]models.Opportunity, error) {
	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.OpportunitiesAfter(ctx, afterID, limit)
}

func (d *Dashboard) News(ctx context.Context, limit int, scored *bool) ([]models.NewsHeadline, error) {
	store, err := d.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.LatestNews(ctx, limit, scored)
}
