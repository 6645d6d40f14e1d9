package usecase

import (
	"context"
	"errors"
	"fmt"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	"FinPulse/internal/service/coindcx"
	"FinPulse/internal/service/newsapi"
	"FinPulse/internal/service/wazirx"
	"FinPulse/internal/service/yahoo"
	applogger "FinPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

// EquityAdapter reads the latest daily bar of each configured ticker.
type EquityAdapter struct {
	client  *yahoo.Client
	tickers []string
	log     *applogger.Logger
}

func NewEquityAdapter(client *yahoo.Client, tickers []string, l *applogger.Logger) *EquityAdapter {
	return &EquityAdapter{client: client, tickers: tickers, log: l}
}

func (a *EquityAdapter) Name() string { return models.SourceYahoo }

// Fetch skips tickers that fail or have no bar. It only errors when every
// ticker request failed.
func (a *EquityAdapter) Fetch(ctx context.Context) (*models.Batch, error) {
	batch := &models.Batch{Source: a.Name()}
	var errs []error
	for _, ticker := range a.tickers {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		bar, ok, err := a.client.LatestBar(ctx, ticker)
		if err != nil {
			a.log.Warn("equity fetch failed", applogger.String("ticker", ticker), applogger.Error(err))
			errs = append(errs, err)
			continue
		}
		if !ok {
			a.log.Debug("no bar for ticker", applogger.String("ticker", ticker))
			continue
		}
		obs := models.PriceObservation{
			Source:      a.Name(),
			AssetTicker: ticker,
			Price:       decimal.NewFromFloat(*bar.Close),
			Volume:      decimal.Zero,
			Timestamp:   bar.Time,
		}
		if bar.Volume != nil {
			obs.Volume = decimal.NewFromFloat(*bar.Volume)
		}
		batch.Prices = append(batch.Prices, obs)
	}
	if len(a.tickers) > 0 && len(errs) == len(a.tickers) {
		return batch, models.NewSourceError(a.Name(), errors.Join(errs...))
	}
	return batch, nil
}

// WazirXAdapter filters the WazirX ticker snapshot to the configured pairs.
type WazirXAdapter struct {
	client *wazirx.Client
	pairs  []string
	log    *applogger.Logger
}

func NewWazirXAdapter(client *wazirx.Client, pairs []string, l *applogger.Logger) *WazirXAdapter {
	return &WazirXAdapter{client: client, pairs: pairs, log: l}
}

func (a *WazirXAdapter) Name() string { return models.SourceWazirX }

func (a *WazirXAdapter) Fetch(ctx context.Context) (*models.Batch, error) {
	obs, skipped, err := a.client.Observations(ctx, a.pairs)
	if err != nil {
		return nil, models.NewSourceError(a.Name(), err)
	}
	logSkipped(a.log, a.Name(), skipped)
	return &models.Batch{Source: a.Name(), Prices: obs}, nil
}

// CoinDCXAdapter filters the CoinDCX ticker snapshot to the configured pairs.
type CoinDCXAdapter struct {
	client *coindcx.Client
	pairs  []string
	log    *applogger.Logger
}

func NewCoinDCXAdapter(client *coindcx.Client, pairs []string, l *applogger.Logger) *CoinDCXAdapter {
	return &CoinDCXAdapter{client: client, pairs: pairs, log: l}
}

func (a *CoinDCXAdapter) Name() string { return models.SourceCoinDCX }

func (a *CoinDCXAdapter) Fetch(ctx context.Context) (*models.Batch, error) {
	obs, skipped, err := a.client.Observations(ctx, a.pairs)
	if err != nil {
		return nil, models.NewSourceError(a.Name(), err)
	}
	logSkipped(a.log, a.Name(), skipped)
	return &models.Batch{Source: a.Name(), Prices: obs}, nil
}

// NewsAdapter searches NewsAPI once per configured term.
type NewsAdapter struct {
	client   *newsapi.Client
	terms    []string
	pageSize int
	log      *applogger.Logger
}

func NewNewsAdapter(client *newsapi.Client, terms []string, pageSize int, l *applogger.Logger) *NewsAdapter {
	return &NewsAdapter{client: client, terms: terms, pageSize: pageSize, log: l}
}

func (a *NewsAdapter) Name() string { return models.SourceNewsAPI }

func (a *NewsAdapter) Fetch(ctx context.Context) (*models.Batch, error) {
	batch := &models.Batch{Source: a.Name()}
	var errs []error
	for _, term := range a.terms {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		articles, err := a.client.Everything(ctx, term, a.pageSize)
		if errors.Is(err, newsapi.ErrMissingAPIKey) {
			return nil, models.NewSourceError(a.Name(), err)
		}
		if err != nil {
			a.log.Warn("news fetch failed", applogger.String("term", term), applogger.Error(err))
			errs = append(errs, err)
			continue
		}
		for _, art := range articles {
			h := newsapi.Normalize(term, art)
			if h.Headline == "" {
				continue
			}
			batch.News = append(batch.News, h)
		}
	}
	if len(a.terms) > 0 && len(errs) == len(a.terms) {
		return batch, models.NewSourceError(a.Name(), fmt.Errorf("all %d terms failed: %w", len(errs), errors.Join(errs...)))
	}
	return batch, nil
}

var (
	_ domrepo.SourceAdapter = (*EquityAdapter)(nil)
	_ domrepo.SourceAdapter = (*WazirXAdapter)(nil)
	_ domrepo.SourceAdapter = (*CoinDCXAdapter)(nil)
	_ domrepo.SourceAdapter = (*NewsAdapter)(nil)
)

func logSkipped(l *applogger.Logger, source string, skipped []error) {
	for _, err := range skipped {
		l.Warn("skipping malformed ticker", applogger.String("source", source), applogger.Error(err))
	}
}
