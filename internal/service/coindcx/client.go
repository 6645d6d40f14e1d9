// Package coindcx reads the CoinDCX public ticker snapshot.
package coindcx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinPulse/internal/domain/models"
	xhttp "FinPulse/pkg/http"
	"FinPulse/pkg/util"

	"github.com/shopspring/decimal"
)

// Ticker is one entry of GET /exchange/ticker. Timestamp is epoch milliseconds.
type Ticker struct {
	Market    string          `json:"market"`
	LastPrice decimal.Decimal `json:"last_price"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp int64           `json:"timestamp"`
}

// Normalize converts a ticker into a price observation. The market is stored
// upper-cased and Timestamp is read as milliseconds.
func Normalize(t Ticker) models.PriceObservation {
	return models.PriceObservation{
		Source:      models.SourceCoinDCX,
		AssetTicker: strings.ToUpper(t.Market),
		Price:       t.LastPrice,
		Volume:      t.Volume,
		Timestamp:   util.UnixMillis(t.Timestamp),
	}
}

type Client struct {
	baseURL string
	http    *xhttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Tickers returns the raw snapshot entries. Entries are decoded one at a time
// so a malformed market never hides the others.
func (c *Client) Tickers(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.http.GetJSON(ctx, c.baseURL+"/exchange/ticker", nil, &out); err != nil {
		return nil, fmt.Errorf("coindcx tickers: %w", err)
	}
	return out, nil
}

// Observations fetches the snapshot and keeps the configured pairs, matched
// case-insensitively. Output is sorted by pair. A configured market whose entry
// cannot be decoded is returned in skipped; other markets are never decoded.
func (c *Client) Observations(ctx context.Context, pairs []string) (out []models.PriceObservation, skipped []error, err error) {
	snap, err := c.Tickers(ctx)
	if err != nil {
		return nil, nil, err
	}
	want := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		want[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
	}

	out = make([]models.PriceObservation, 0, len(pairs))
	for _, raw := range snap {
		var head struct {
			Market string `json:"market"`
		}
		if json.Unmarshal(raw, &head) != nil {
			continue
		}
		market := strings.ToUpper(head.Market)
		if _, ok := want[market]; !ok {
			continue
		}
		var t Ticker
		if err := json.Unmarshal(raw, &t); err != nil {
			skipped = append(skipped, fmt.Errorf("coindcx market %s: %w", market, err))
			continue
		}
		out = append(out, Normalize(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetTicker < out[j].AssetTicker })
	return out, skipped, nil
}
