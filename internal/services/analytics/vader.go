package analytics

import (
	"context"

	domsvc "FinPulse/internal/domain/service"

	"github.com/jonreiter/govader"
)

// VaderScorer scores headlines in-process with VADER and returns the
// compound score, already normalized to [-1, 1].
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *VaderScorer) Polarity(_ context.Context, text string) (float64, error) {
	return clamp(s.analyzer.PolarityScores(text).Compound), nil
}

var _ domsvc.SentimentScorer = (*VaderScorer)(nil)
