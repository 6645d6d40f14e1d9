package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/service/coindcx"
	"FinPulse/internal/service/newsapi"
	"FinPulse/internal/service/wazirx"
	"FinPulse/internal/service/yahoo"
	"FinPulse/internal/usecase"
	applogger "FinPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneBar = `{"chart":{"result":[{"timestamp":[1717372800],
"indicators":{"quote":[{"close":[3825.25],"volume":[1500]}]}}],"error":null}}`

const noBar = `{"chart":{"result":[{"timestamp":[1717372800],
"indicators":{"quote":[{"close":[null],"volume":[null]}]}}],"error":null}}`

func TestEquityAdapterSkipsFailedAndEmptyTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/TCS.NS"):
			_, _ = w.Write([]byte(oneBar))
		case strings.HasSuffix(r.URL.Path, "/INFY.NS"):
			_, _ = w.Write([]byte(noBar))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	a := usecase.NewEquityAdapter(yahoo.NewClient(srv.URL, time.Second), []string{"BAD.NS", "INFY.NS", "TCS.NS"}, applogger.Nop())
	batch, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Prices, 1)

	got := batch.Prices[0]
	assert.Equal(t, models.SourceYahoo, got.Source)
	assert.Equal(t, "TCS.NS", got.AssetTicker)
	assert.Equal(t, "3825.25", got.Price.String())
	assert.Equal(t, "1500", got.Volume.String())
	assert.Equal(t, time.Unix(1717372800, 0).UTC(), got.Timestamp)
}

func TestEquityAdapterAllTickersFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := usecase.NewEquityAdapter(yahoo.NewClient(srv.URL, time.Second), []string{"A.NS", "B.NS"}, applogger.Nop())
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)

	var se *models.SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.SourceYahoo, se.Source)
}

func TestWazirXAdapterWrapsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := usecase.NewWazirXAdapter(wazirx.NewClient(srv.URL, time.Second), []string{"btcinr"}, applogger.Nop()).Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}

func TestNewsAdapterSkipsFailedTerm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":2,"articles":[
{"source":{"name":"Mint"},"title":"Reliance rallies","publishedAt":"2024-06-01T10:00:00Z"},
{"source":{"name":"Mint"},"title":"   ","publishedAt":"2024-06-01T09:00:00Z"}]}`))
	}))
	defer srv.Close()

	a := usecase.NewNewsAdapter(newsapi.NewClient(srv.URL, "key", time.Second), []string{"broken", "Reliance"}, 10, applogger.Nop())
	batch, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.News, 1)
	assert.Equal(t, "Reliance", batch.News[0].AssetTicker)
	assert.Equal(t, "Reliance rallies", batch.News[0].Headline)
	assert.Nil(t, batch.News[0].SentimentScore)
}

func TestNewsAdapterWithoutKey(t *testing.T) {
	a := usecase.NewNewsAdapter(newsapi.NewClient("http://127.0.0.1:1", "", time.Second), []string{"x"}, 10, applogger.Nop())
	_, err := a.Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	assert.ErrorIs(t, err, newsapi.ErrMissingAPIKey)
}

func TestCoinDCXAdapterKeepsGoodPairsWhenOneIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
 {"market":"BTCINR","last_price":"5401000","volume":"3","timestamp":1717236000000},
 {"market":"NEWCOININR","last_price":"","volume":"","timestamp":1717236000000}
]`))
	}))
	defer srv.Close()

	batch, err := usecase.NewCoinDCXAdapter(coindcx.NewClient(srv.URL, time.Second), []string{"btcinr"}, applogger.Nop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Prices, 1)
	assert.Equal(t, "BTCINR", batch.Prices[0].AssetTicker)
}
