// Package yahoo reads daily bars from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"FinPulse/internal/domain/models"
	xhttp "FinPulse/pkg/http"
)

// Browsers are the only clients Yahoo serves reliably.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

type Client struct {
	baseURL string
	http    *xhttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent(userAgent)),
	}
}

// Bar is one chart sample. Close and Volume are nil when Yahoo reports no trade.
type Bar struct {
	Time   time.Time
	Close  *float64
	Volume *float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Chart returns bars for ticker over rng (e.g. "1d", "1y") at interval, oldest first.
func (c *Client) Chart(ctx context.Context, ticker, rng, interval string) ([]Bar, error) {
	var resp chartResponse
	err := c.http.GetJSON(ctx,
		fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		map[string][]string{"range": {rng}, "interval": {interval}},
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	r := resp.Chart.Result[0]
	var closes, volumes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
		volumes = r.Indicators.Quote[0].Volume
	}
	bars := make([]Bar, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bars[i].Time = time.Unix(ts, 0).UTC()
		if i < len(closes) {
			bars[i].Close = closes[i]
		}
		if i < len(volumes) {
			bars[i].Volume = volumes[i]
		}
	}
	return bars, nil
}

// LatestBar returns the most recent bar that has a close. ok is false when the
// chart holds no such bar.
func (c *Client) LatestBar(ctx context.Context, ticker string) (bar Bar, ok bool, err error) {
	bars, err := c.Chart(ctx, ticker, "1d", "1d")
	if err != nil {
		return Bar{}, false, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close != nil {
			return bars[i], true, nil
		}
	}
	return Bar{}, false, nil
}

// DailyCloses returns one year of daily closes with missing closes dropped.
func (c *Client) DailyCloses(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	bars, err := c.Chart(ctx, ticker, "1y", "1d")
	if err != nil {
		return nil, err
	}
	out := make([]models.PricePoint, 0, len(bars))
	for _, b := range bars {
		if b.Close == nil {
			continue
		}
		out = append(out, models.PricePoint{Time: b.Time, Price: *b.Close})
	}
	return out, nil
}
