// Package newsapi searches articles through NewsAPI's /v2/everything endpoint.
package newsapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinPulse/internal/domain/models"
	xhttp "FinPulse/pkg/http"
)

var ErrMissingAPIKey = errors.New("newsapi: api key not configured")

type Article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

// Normalize turns an article found for term into an unscored headline row.
func Normalize(term string, a Article) models.NewsHeadline {
	return models.NewsHeadline{
		AssetTicker: term,
		SourceName:  a.Source.Name,
		Headline:    strings.TrimSpace(a.Title),
		PublishedAt: a.PublishedAt.UTC(),
	}
}

type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Everything returns the newest English articles matching term.
func (c *Client) Everything(ctx context.Context, term string, pageSize int) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var resp everythingResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v2/everything",
		Headers: map[string]string{
			"X-Api-Key": c.apiKey,
			"Accept":    "application/json",
		},
		QueryParams: map[string][]string{
			"q":        {term},
			"language": {"en"},
			"sortBy":   {"publishedAt"},
			"pageSize": {strconv.Itoa(pageSize)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("newsapi everything %q: %w", term, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi everything %q: %s: %s", term, resp.Code, resp.Message)
	}
	return resp.Articles, nil
}
