package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	applogger "FinPulse/pkg/logger"

	"github.com/google/uuid"
)

// AdapterReport is the outcome of one adapter within a harvest cycle.
type AdapterReport struct {
	Source string
	Prices int
	News   int
	Err    error
}

// HarvestReport summarizes one harvest cycle.
type HarvestReport struct {
	CycleID  string
	Started  time.Time
	Finished time.Time
	Adapters []AdapterReport
}

// Failed lists the sources whose fetch or commit failed.
func (r HarvestReport) Failed() []string {
	var out []string
	for _, a := range r.Adapters {
		if a.Err != nil {
			out = append(out, a.Source)
		}
	}
	return out
}

// HarvestCycle runs every source adapter once, in order, committing each
// adapter's rows in its own transaction.
type HarvestCycle struct {
	connector domrepo.Connector
	adapters  []domrepo.SourceAdapter
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

func NewHarvestCycle(connector domrepo.Connector, adapters []domrepo.SourceAdapter, publisher domrepo.EventPublisher, metrics domrepo.Metrics, l *applogger.Logger) *HarvestCycle {
	return &HarvestCycle{connector: connector, adapters: adapters, publisher: publisher, metrics: metrics, log: l}
}

// Run executes one cycle. A store failure abandons the rest of the cycle and
// is returned; adapter failures are recorded in the report only.
func (h *HarvestCycle) Run(ctx context.Context) (HarvestReport, error) {
	report := HarvestReport{CycleID: uuid.NewString(), Started: time.Now()}
	log := h.log.With(applogger.String("cycle_id", report.CycleID), applogger.String("loop", "harvest"))
	log.Info("harvest cycle started")

	store, err := h.connector.Connect(ctx)
	if err != nil {
		report.Finished = time.Now()
		h.metrics.RecordError("store_connect")
		return report, fmt.Errorf("harvest: %w", err)
	}

	for _, adapter := range h.adapters {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, err
		}
		ar := h.runAdapter(ctx, store, adapter, log)
		report.Adapters = append(report.Adapters, ar)
		if errors.Is(ar.Err, models.ErrStoreUnavailable) {
			report.Finished = time.Now()
			return report, fmt.Errorf("harvest %s: %w", ar.Source, ar.Err)
		}
	}

	report.Finished = time.Now()
	log.Info("harvest cycle finished",
		applogger.Duration("duration", report.Finished.Sub(report.Started)),
		applogger.Strings("failed", report.Failed()),
	)
	return report, nil
}

func (h *HarvestCycle) runAdapter(ctx context.Context, store domrepo.Store, adapter domrepo.SourceAdapter, log *applogger.Logger) AdapterReport {
	ar := AdapterReport{Source: adapter.Name()}
	log = log.With(applogger.String("source", ar.Source))

	start := time.Now()
	batch, err := adapter.Fetch(ctx)
	h.metrics.RecordLatency("fetch_"+ar.Source, time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("source")
		log.Error("adapter failed", applogger.Error(err))
		ar.Err = err
		return ar
	}
	if batch == nil {
		return ar
	}

	if len(batch.Prices) > 0 {
		if err := store.InsertPrices(ctx, batch.Prices); err != nil {
			h.metrics.RecordError("store_insert")
			log.Error("store prices failed", applogger.Error(err))
			ar.Err = err
			return ar
		}
		ar.Prices = len(batch.Prices)
		h.metrics.RecordRows("price_data", ar.Source, ar.Prices)
		for _, o := range batch.Prices {
			price, _ := o.Price.Float64()
			h.metrics.RecordLastPrice(ar.Source, o.AssetTicker, price)
			log.Info("stored price",
				applogger.String("ticker", o.AssetTicker),
				applogger.String("price", o.Price.String()),
			)
		}
		if h.publisher != nil {
			if err := h.publisher.PublishPrices(ctx, batch.Prices); err != nil {
				h.metrics.RecordError("publish")
				log.Warn("publish prices failed", applogger.Error(err))
			}
		}
	}

	if len(batch.News) > 0 {
		n, err := store.InsertNewsIfAbsent(ctx, batch.News)
		if err != nil {
			h.metrics.RecordError("store_insert")
			log.Error("store news failed", applogger.Error(err))
			ar.Err = err
			return ar
		}
		ar.News = n
		h.metrics.RecordRows("market_news", ar.Source, n)
		log.Info("stored new headlines", applogger.Int("new", n), applogger.Int("fetched", len(batch.News)))
	}
	return ar
}
