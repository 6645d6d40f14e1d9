package analytics

import (
	"context"
	"math"

	domsvc "FinPulse/internal/domain/service"
)

// HTTPSentimentScorer delegates scoring to the model service's /sentiment endpoint.
type HTTPSentimentScorer struct{ base *HTTPServiceBase }

func NewHTTPSentimentScorer(base *HTTPServiceBase) *HTTPSentimentScorer {
	return &HTTPSentimentScorer{base: base}
}

type sentimentReq struct {
	Text string `json:"text"`
}

type sentimentResp struct {
	Polarity float64 `json:"polarity"`
}

func (s *HTTPSentimentScorer) Polarity(ctx context.Context, text string) (float64, error) {
	var resp sentimentResp
	if err := s.base.PostJSONWithRetry(ctx, "/sentiment", sentimentReq{Text: text}, &resp); err != nil {
		return 0, err
	}
	return clamp(resp.Polarity), nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

var _ domsvc.SentimentScorer = (*HTTPSentimentScorer)(nil)
