// Package wazirx reads the WazirX public ticker snapshot.
package wazirx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinPulse/internal/domain/models"
	xhttp "FinPulse/pkg/http"

	"github.com/shopspring/decimal"
)

// Ticker is one entry of GET /api/v2/tickers. At is epoch seconds.
type Ticker struct {
	BaseUnit  string          `json:"base_unit"`
	QuoteUnit string          `json:"quote_unit"`
	Last      decimal.Decimal `json:"last"`
	Volume    decimal.Decimal `json:"volume"`
	At        int64           `json:"at"`
}

// Normalize converts a ticker for pair into a price observation. The pair is
// stored upper-cased and At is read as seconds.
func Normalize(pair string, t Ticker) models.PriceObservation {
	return models.PriceObservation{
		Source:      models.SourceWazirX,
		AssetTicker: strings.ToUpper(pair),
		Price:       t.Last,
		Volume:      t.Volume,
		Timestamp:   time.Unix(t.At, 0).UTC(),
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

// Tickers returns the raw snapshot keyed by lowercase pair. Entries are
// decoded one at a time so a malformed pair never hides the others.
func (c *Client) Tickers(ctx context.Context) (map[string]json.RawMessage, error) {
	var out map[string]json.RawMessage
	if err := c.http.GetJSON(ctx, c.baseURL+"/api/v2/tickers", nil, &out); err != nil {
		return nil, fmt.Errorf("wazirx tickers: %w", err)
	}
	return out, nil
}

// Observations fetches the snapshot and keeps the configured pairs, matched
// case-insensitively. Output is sorted by pair. A configured pair whose entry
// cannot be decoded is returned in skipped; other pairs are never decoded.
func (c *Client) Observations(ctx context.Context, pairs []string) (out []models.PriceObservation, skipped []error, err error) {
	snap, err := c.Tickers(ctx)
	if err != nil {
		return nil, nil, err
	}
	want := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		want[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}

	out = make([]models.PriceObservation, 0, len(pairs))
	for pair, raw := range snap {
		if _, ok := want[strings.ToLower(pair)]; !ok {
			continue
		}
		var t Ticker
		if err := json.Unmarshal(raw, &t); err != nil {
			skipped = append(skipped, fmt.Errorf("wazirx pair %s: %w", pair, err))
			continue
		}
		out = append(out, Normalize(pair, t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetTicker < out[j].AssetTicker })
	return out, skipped, nil
}
