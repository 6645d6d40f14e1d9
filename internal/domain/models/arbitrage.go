package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageSignal is a cross-source spread for one pair at detection time.
type ArbitrageSignal struct {
	Pair          string          `json:"pair"`
	BuySource     string          `json:"buy_source"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SellSource    string          `json:"sell_source"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
	DetectedAt    time.Time       `json:"detected_at"`
}

// Details renders the audit text stored in opportunities.details.
func (s ArbitrageSignal) Details() string {
	return fmt.Sprintf("Buy %s on %s at %s and Sell on %s at %s. Potential Profit: %s%%",
		s.Pair,
		s.BuySource, s.BuyPrice.StringFixed(2),
		s.SellSource, s.SellPrice.StringFixed(2),
		s.ProfitPercent.StringFixed(2),
	)
}

// Opportunity converts the signal to its persisted form.
func (s ArbitrageSignal) Opportunity() *Opportunity {
	return &Opportunity{
		OpportunityType: OpportunityTypeArbitrage,
		Details:         s.Details(),
		CreatedAt:       s.DetectedAt,
	}
}

// OpportunityEvent is published after an opportunity is committed.
type OpportunityEvent struct {
	ID      uint64          `json:"id"`
	Type    string          `json:"opportunity_type"`
	Details string          `json:"details"`
	Signal  ArbitrageSignal `json:"signal"`
}
