package analytics

import (
	"context"
	"fmt"

	"FinPulse/internal/domain/models"
	domsvc "FinPulse/internal/domain/service"
	"FinPulse/pkg/util"
)

// HTTPForecaster delegates fitting to the model service's /forecast endpoint.
type HTTPForecaster struct{ base *HTTPServiceBase }

func NewHTTPForecaster(base *HTTPServiceBase) *HTTPForecaster {
	return &HTTPForecaster{base: base}
}

type forecastPoint struct {
	DS string  `json:"ds"`
	Y  float64 `json:"y"`
}

type forecastReq struct {
	Series  []forecastPoint `json:"series"`
	Horizon int             `json:"horizon"`
}

type forecastResp struct {
	YHat []float64 `json:"yhat"`
}

func (f *HTTPForecaster) FitPredict(ctx context.Context, series []models.PricePoint, horizon int) ([]float64, error) {
	req := forecastReq{Series: make([]forecastPoint, len(series)), Horizon: horizon}
	for i, p := range series {
		req.Series[i] = forecastPoint{DS: p.Time.Format(util.DateLayout), Y: p.Price}
	}
	var resp forecastResp
	if err := f.base.PostJSONWithRetry(ctx, "/forecast", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.YHat) != horizon {
		return nil, fmt.Errorf("forecast service returned %d points, want %d", len(resp.YHat), horizon)
	}
	return resp.YHat, nil
}

var _ domsvc.Forecaster = (*HTTPForecaster)(nil)
