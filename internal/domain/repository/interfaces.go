package repository

import (
	"context"
	"time"

	"FinPulse/internal/domain/models"
)

// Store is the persisted store. Every mutating method commits its own
// transaction; a failed call leaves no partial rows behind.
type Store interface {
	Ping(ctx context.Context) error

	// InsertPrices appends observations in one transaction.
	InsertPrices(ctx context.Context, obs []models.PriceObservation) error
	// RecentPrices returns rows for ticker with timestamp > since, newest first.
	RecentPrices(ctx context.Context, ticker string, since time.Time) ([]models.PriceObservation, error)
	// PriceHistory returns rows for ticker in [from, to], oldest first. limit <= 0 means no limit.
	PriceHistory(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.PriceObservation, error)

	// InsertNewsIfAbsent inserts headlines not already present and reports how many were new.
	InsertNewsIfAbsent(ctx context.Context, news []models.NewsHeadline) (int, error)
	// UnscoredNews returns unscored headlines with id > afterID, oldest first.
	UnscoredNews(ctx context.Context, afterID uint64, limit int) ([]models.NewsHeadline, error)
	// SetSentiment writes a score only if none is set yet; false means the row was already scored.
	SetSentiment(ctx context.Context, id uint64, score float64) (bool, error)
	LatestNews(ctx context.Context, limit int, scored *bool) ([]models.NewsHeadline, error)

	InsertOpportunity(ctx context.Context, o *models.Opportunity) error
	LatestOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error)
	// OpportunitiesAfter returns rows with id > afterID, oldest first.
	OpportunitiesAfter(ctx context.Context, afterID uint64, limit int) ([]models.Opportunity, error)

	// ReplacePredictions deletes every row for ticker and inserts preds in one transaction.
	ReplacePredictions(ctx context.Context, ticker string, preds []models.PricePrediction) error
	Predictions(ctx context.Context, ticker string) ([]models.PricePrediction, error)
}

// Connector hands out a live Store, establishing (or re-establishing) the
// connection as needed. Failures wrap models.ErrStoreUnavailable.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
	Close() error
}

// SourceAdapter fetches one provider snapshot. Errors wrap models.ErrSourceUnavailable.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) (*models.Batch, error)
}

// EventPublisher fans committed rows out to downstream consumers.
type EventPublisher interface {
	PublishPrices(ctx context.Context, obs []models.PriceObservation) error
	PublishOpportunity(ctx context.Context, ev models.OpportunityEvent) error
	Close() error
}

// TickArchive is the long-term analytical sink for price events.
type TickArchive interface {
	Init(ctx context.Context) error
	StoreBatch(ctx context.Context, obs []models.PriceObservation) error
	Close() error
}

type Metrics interface {
	RecordCycle(loop, outcome string)
	RecordError(kind string)
	RecordRows(table, source string, n int)
	RecordLastPrice(source, ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
