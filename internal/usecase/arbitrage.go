package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	applogger "FinPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ArbitrageDetector compares the latest quote of each source for a pair and
// records spreads above the threshold.
type ArbitrageDetector struct {
	pairs     []string
	window    time.Duration
	threshold decimal.Decimal
	clock     Clock
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

func NewArbitrageDetector(pairs []string, window time.Duration, thresholdPct float64, clock Clock, publisher domrepo.EventPublisher, metrics domrepo.Metrics, l *applogger.Logger) *ArbitrageDetector {
	if clock == nil {
		clock = SystemClock()
	}
	return &ArbitrageDetector{
		pairs:     pairs,
		window:    window,
		threshold: decimal.NewFromFloat(thresholdPct),
		clock:     clock,
		publisher: publisher,
		metrics:   metrics,
		log:       l,
	}
}

// Run checks every pair and returns the signals that were committed.
func (d *ArbitrageDetector) Run(ctx context.Context, store domrepo.Store) ([]models.ArbitrageSignal, error) {
	var out []models.ArbitrageSignal
	for _, pair := range d.pairs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sig, ok, err := d.checkPair(ctx, store, pair)
		if err != nil {
			if errors.Is(err, models.ErrStoreUnavailable) {
				return out, err
			}
			d.metrics.RecordError("arbitrage")
			d.log.Error("arbitrage check failed", applogger.String("pair", pair), applogger.Error(err))
			continue
		}
		if ok {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (d *ArbitrageDetector) checkPair(ctx context.Context, store domrepo.Store, pair string) (models.ArbitrageSignal, bool, error) {
	now := d.clock.Now().UTC()
	rows, err := store.RecentPrices(ctx, pair, now.Add(-d.window))
	if err != nil {
		return models.ArbitrageSignal{}, false, err
	}
	sig, ok := Spread(pair, rows, now)
	if !ok || !sig.ProfitPercent.GreaterThan(d.threshold) {
		return models.ArbitrageSignal{}, false, nil
	}

	opp := sig.Opportunity()
	if err := store.InsertOpportunity(ctx, opp); err != nil {
		return models.ArbitrageSignal{}, false, fmt.Errorf("insert opportunity %s: %w", pair, err)
	}
	d.metrics.RecordRows("opportunities", sig.BuySource, 1)
	d.log.Info("arbitrage opportunity",
		applogger.String("pair", pair),
		applogger.String("details", opp.Details),
	)

	if d.publisher != nil {
		ev := models.OpportunityEvent{ID: opp.ID, Type: opp.OpportunityType, Details: opp.Details, Signal: sig}
		if err := d.publisher.PublishOpportunity(ctx, ev); err != nil {
			d.metrics.RecordError("publish")
			d.log.Warn("publish opportunity failed", applogger.Error(err))
		}
	}
	return sig, true, nil
}

// Spread projects rows (newest first) to the latest quote per source and
// returns the buy-low/sell-high spread. ok is false with fewer than two sources.
// Ties on price go to the lexicographically smallest source name.
func Spread(pair string, rows []models.PriceObservation, at time.Time) (models.ArbitrageSignal, bool) {
	latest := make(map[string]decimal.Decimal)
	for _, r := range rows {
		if _, seen := latest[r.Source]; !seen {
			latest[r.Source] = r.Price
		}
	}
	if len(latest) < 2 {
		return models.ArbitrageSignal{}, false
	}

	sources := make([]string, 0, len(latest))
	for s := range latest {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	buySrc, sellSrc := sources[0], sources[0]
	for _, s := range sources[1:] {
		if latest[s].LessThan(latest[buySrc]) {
			buySrc = s
		}
		if latest[s].GreaterThan(latest[sellSrc]) {
			sellSrc = s
		}
	}

	buy, sell := latest[buySrc], latest[sellSrc]
	profit := decimal.Zero
	if buy.IsPositive() {
		profit = sell.Sub(buy).Div(buy).Mul(hundred)
	}
	return models.ArbitrageSignal{
		Pair:          pair,
		BuySource:     buySrc,
		BuyPrice:      buy,
		SellSource:    sellSrc,
		SellPrice:     sell,
		ProfitPercent: profit,
		DetectedAt:    at,
	}, true
}
