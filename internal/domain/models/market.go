package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source names as stored in price_data.source.
const (
	SourceYahoo   = "NSE_yfinance"
	SourceWazirX  = "WazirX_API"
	SourceCoinDCX = "CoinDCX_API"
	SourceNewsAPI = "NewsAPI"
)

const OpportunityTypeArbitrage = "ARBITRAGE"

// PriceObservation is one harvested quote. Rows are append-only.
type PriceObservation struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Source      string          `gorm:"size:50;not null" json:"source"`
	AssetTicker string          `gorm:"size:32;not null;index:idx_price_ticker_ts,priority:1" json:"asset_ticker"`
	Price       decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"price"`
	Volume      decimal.Decimal `gorm:"type:numeric(30,8);not null;default:0" json:"volume"`
	Timestamp   time.Time       `gorm:"not null;index:idx_price_ticker_ts,priority:2" json:"timestamp"`
}

func (PriceObservation) TableName() string { return "price_data" }

// NewsHeadline is one harvested article. Headlines are unique; the sentiment
// score is written at most once.
type NewsHeadline struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetTicker    string    `gorm:"size:100;not null;index" json:"asset_ticker"`
	SourceName     string    `gorm:"size:200" json:"source_name"`
	Headline       string    `gorm:"type:text;not null;uniqueIndex:uq_market_news_headline" json:"headline"`
	PublishedAt    time.Time `gorm:"index" json:"published_at"`
	SentimentScore *float64  `json:"sentiment_score"`
}

func (NewsHeadline) TableName() string { return "market_news" }

// Opportunity is an audit-log entry of a detected arbitrage spread.
type Opportunity struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OpportunityType string    `gorm:"size:32;not null" json:"opportunity_type"`
	Details         string    `gorm:"type:text;not null" json:"details"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}

func (Opportunity) TableName() string { return "opportunities" }

// PricePrediction is one forecast point. The set for a ticker is replaced as a whole.
type PricePrediction struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetTicker    string          `gorm:"size:32;not null;index" json:"asset_ticker"`
	PredictionDate time.Time       `gorm:"type:date;not null" json:"prediction_date"`
	PredictedPrice decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"predicted_price"`
}

func (PricePrediction) TableName() string { return "price_predictions" }

// PricePoint is one (time, price) sample of a series fed to a forecaster.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Batch is what a source adapter produced in one fetch.
type Batch struct {
	Source string
	Prices []PriceObservation
	News   []NewsHeadline
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Prices) + len(b.News)
}

// AllModels lists every persisted model, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&PriceObservation{},
		&NewsHeadline{},
		&Opportunity{},
		&PricePrediction{},
	}
}
