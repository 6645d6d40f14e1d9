package repository_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/repository"
	"FinPulse/internal/repository/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(source, ticker, price string, ts time.Time) models.PriceObservation {
	return models.PriceObservation{
		Source:      source,
		AssetTicker: ticker,
		Price:       decimal.RequireFromString(price),
		Volume:      decimal.RequireFromString("1"),
		Timestamp:   ts,
	}
}

func TestInsertPricesAndRecentPricesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertPrices(ctx, []models.PriceObservation{
		obs(models.SourceWazirX, "BTCINR", "100", now.Add(-10*time.Minute)),
		obs(models.SourceWazirX, "BTCINR", "101", now.Add(-2*time.Minute)),
		obs(models.SourceCoinDCX, "BTCINR", "102", now.Add(-1*time.Minute)),
		obs(models.SourceCoinDCX, "ETHINR", "9", now.Add(-1*time.Minute)),
	}))

	rows, err := s.RecentPrices(ctx, "BTCINR", now.Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.SourceCoinDCX, rows[0].Source)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(102)))
	assert.Equal(t, models.SourceWazirX, rows[1].Source)
}

func TestNewsDedupByExactHeadline(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	n, err := s.InsertNewsIfAbsent(ctx, []models.NewsHeadline{
		{AssetTicker: "Bitcoin India", SourceName: "Mint", Headline: "Bitcoin rallies", PublishedAt: at},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same headline twice more, in a later batch and within one batch.
	n, err = s.InsertNewsIfAbsent(ctx, []models.NewsHeadline{
		{AssetTicker: "Bitcoin India", SourceName: "ET", Headline: "Bitcoin rallies", PublishedAt: at},
		{AssetTicker: "Bitcoin India", SourceName: "ET", Headline: "Bitcoin slips", PublishedAt: at},
		{AssetTicker: "Bitcoin India", SourceName: "ET", Headline: "Bitcoin slips", PublishedAt: at},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.LatestNews(ctx, 10, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetSentimentOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)

	_, err := s.InsertNewsIfAbsent(ctx, []models.NewsHeadline{{AssetTicker: "TCS", Headline: "TCS wins deal", PublishedAt: time.Now().UTC()}})
	require.NoError(t, err)

	pending, err := s.UnscoredNews(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	ok, err := s.SetSentiment(ctx, pending[0].ID, 0.6)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetSentiment(ctx, pending[0].ID, -0.9)
	require.NoError(t, err)
	assert.False(t, ok)

	scored := true
	rows, err := s.LatestNews(ctx, 10, &scored)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].SentimentScore)
	assert.InDelta(t, 0.6, *rows[0].SentimentScore, 1e-9)

	pending, err = s.UnscoredNews(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReplacePredictionsKeepsOnlyLatestRun(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	run := func(price int64) []models.PricePrediction {
		out := make([]models.PricePrediction, 7)
		for i := range out {
			out[i] = models.PricePrediction{
				PredictionDate: base.AddDate(0, 0, i+1),
				PredictedPrice: decimal.NewFromInt(price + int64(i)),
			}
		}
		return out
	}

	require.NoError(t, s.ReplacePredictions(ctx, "TCS.NS", run(100)))
	require.NoError(t, s.ReplacePredictions(ctx, "TCS.NS", run(200)))
	require.NoError(t, s.ReplacePredictions(ctx, "RELIANCE.NS", run(50)))

	rows, err := s.Predictions(ctx, "TCS.NS")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.True(t, rows[0].PredictedPrice.Equal(decimal.NewFromInt(200)))
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].PredictionDate.After(rows[i-1].PredictionDate))
	}

	other, err := s.Predictions(ctx, "RELIANCE.NS")
	require.NoError(t, err)
	assert.Len(t, other, 7)
}

func TestOpportunitiesAppendOnlyAndCursor(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		o := &models.Opportunity{OpportunityType: models.OpportunityTypeArbitrage, Details: "same text", CreatedAt: at}
		require.NoError(t, s.InsertOpportunity(ctx, o))
		assert.NotZero(t, o.ID)
	}

	latest, err := s.LatestOpportunities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Greater(t, latest[0].ID, latest[1].ID)

	after, err := s.OpportunitiesAfter(ctx, latest[1].ID, 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, latest[0].ID, after[0].ID)
}

func TestPriceHistoryRange(t *testing.T) {
	ctx := context.Background()
	s := testdb.New(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var rows []models.PriceObservation
	for i := 0; i < 5; i++ {
		rows = append(rows, obs(models.SourceYahoo, "TCS.NS", fmt.Sprintf("%d", 100+i), base.AddDate(0, 0, i)))
	}
	require.NoError(t, s.InsertPrices(ctx, rows))
	assert.NotZero(t, rows[0].ID, "ids are written back to the caller's slice")

	got, err := s.PriceHistory(ctx, "TCS.NS", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3), 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(101)))
	assert.True(t, got[2].Price.Equal(decimal.NewFromInt(103)))
}

func TestStaticConnectorPropagatesError(t *testing.T) {
	c := &repository.StaticConnector{Err: models.ErrStoreUnavailable}
	_, err := c.Connect(context.Background())
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestConnectorReportsUnavailableWhenClosed(t *testing.T) {
	s := testdb.New(t)
	require.NoError(t, s.Close())

	_, err := (&repository.StaticConnector{Store: s}).Connect(context.Background())
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	err := fmt.Errorf("dial: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
	assert.True(t, repository.IsConnectionError(err))
	assert.False(t, repository.IsConnectionError(errors.New("syntax error")))
}
