package usecase

import (
	"context"
	"errors"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	domsvc "FinPulse/internal/domain/service"
	applogger "FinPulse/pkg/logger"
)

const sentimentBatchSize = 500

// SentimentJob scores headlines that have no sentiment yet.
type SentimentJob struct {
	scorer   domsvc.SentimentScorer
	metrics  domrepo.Metrics
	log      *applogger.Logger
	pageSize int
}

func NewSentimentJob(scorer domsvc.SentimentScorer, metrics domrepo.Metrics, l *applogger.Logger) *SentimentJob {
	return &SentimentJob{scorer: scorer, metrics: metrics, log: l, pageSize: sentimentBatchSize}
}

// ScorePending scores every unscored headline and returns how many rows were
// written. Rows are read in id order one page at a time so failing rows never
// hide later ones. A row that fails to score is left for the next run.
func (j *SentimentJob) ScorePending(ctx context.Context, store domrepo.Store) (int, error) {
	var (
		after   uint64
		updated int
		seen    int
	)
	for {
		rows, err := store.UnscoredNews(ctx, after, j.pageSize)
		if err != nil {
			return updated, err
		}
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return updated, err
			}
			after = row.ID
			ok, err := j.score(ctx, store, row)
			if err != nil {
				return updated, err
			}
			if ok {
				updated++
			}
		}
		seen += len(rows)
		if len(rows) < j.pageSize {
			break
		}
	}
	if seen == 0 {
		j.log.Debug("no headlines to score")
		return 0, nil
	}
	j.metrics.RecordRows("market_news_scored", models.SourceNewsAPI, updated)
	j.log.Info("sentiment scoring finished", applogger.Int("updated", updated), applogger.Int("pending", seen))
	return updated, nil
}

// score returns an error only when the store is gone.
func (j *SentimentJob) score(ctx context.Context, store domrepo.Store, row models.NewsHeadline) (bool, error) {
	score, err := j.scorer.Polarity(ctx, row.Headline)
	if err != nil {
		j.metrics.RecordError("sentiment_score")
		j.log.Warn("score headline failed", applogger.Any("id", row.ID), applogger.Error(err))
		return false, nil
	}
	ok, err := store.SetSentiment(ctx, row.ID, score)
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			return false, err
		}
		j.metrics.RecordError("sentiment_store")
		j.log.Warn("store sentiment failed", applogger.Any("id", row.ID), applogger.Error(err))
		return false, nil
	}
	if ok {
		j.log.Debug("scored headline", applogger.Any("id", row.ID), applogger.Float64("score", score))
	}
	return ok, nil
}

// WithPageSize overrides how many rows are read per query.
func (j *SentimentJob) WithPageSize(n int) *SentimentJob {
	if n > 0 {
		j.pageSize = n
	}
	return j
}
