package models

import "time"

// Query parameters for the dashboard API.

type ForecastRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,ticker"`
}

type HistoryRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,ticker"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type OpportunitiesRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type NewsRequest struct {
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Scored string `query:"scored" json:"scored" validate:"omitempty,oneof=true false"`
}

// ForecastPoint is one predicted value in an API response.
type ForecastPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type ForecastResponse struct {
	Ticker   string            `json:"ticker"`
	Forecast []ForecastPoint   `json:"forecast"`
	Stored   []PricePrediction `json:"stored"`
	Warning  string            `json:"warning,omitempty"`
}

type AssetsResponse struct {
	Assets []string `json:"assets"`
}

type OverviewRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,ticker"`
}

// AssetOverview gathers what the dashboard shows for one instrument. Parts
// that failed are named in Errors and left empty.
type AssetOverview struct {
	Ticker      string             `json:"ticker"`
	Timestamp   time.Time          `json:"timestamp"`
	Latest      []PriceObservation `json:"latest,omitempty"`
	Predictions []PricePrediction  `json:"predictions,omitempty"`
	Forecast    *ForecastResponse  `json:"forecast,omitempty"`
	Errors      map[string]string  `json:"errors,omitempty"`
}
