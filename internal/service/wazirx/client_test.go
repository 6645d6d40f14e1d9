package wazirx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinPulse/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `{
 "btcinr":{"base_unit":"btc","quote_unit":"inr","last":"5400000.5","volume":"12.75","at":1717236000},
 "ethinr":{"base_unit":"eth","quote_unit":"inr","last":"310000","volume":"140","at":1717236001},
 "dogeinr":{"base_unit":"doge","quote_unit":"inr","last":"12.1","volume":"1","at":1717236002}
}`

func TestObservationsFiltersAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/tickers", r.URL.Path)
		_, _ = w.Write([]byte(snapshot))
	}))
	defer srv.Close()

	got, skipped, err := NewClient(srv.URL, time.Second).Observations(context.Background(), []string{"BTCINR", "ethinr", "solinr"})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, got, 2)

	assert.Equal(t, "BTCINR", got[0].AssetTicker)
	assert.Equal(t, models.SourceWazirX, got[0].Source)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("5400000.5")))
	assert.True(t, got[0].Volume.Equal(decimal.RequireFromString("12.75")))
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), got[0].Timestamp)

	assert.Equal(t, "ETHINR", got[1].AssetTicker)
}

func TestObservationsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL, time.Second).Observations(context.Background(), []string{"btcinr"})
	require.Error(t, err)
}

func TestObservationsIgnoresMalformedUnrelatedPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
 "btcinr":{"last":"5400000.5","volume":"12.75","at":1717236000},
 "newcoininr":{"last":"","volume":"","at":1717236000},
 "ethinr":{"last":"oops","volume":"1","at":1717236000}
}`))
	}))
	defer srv.Close()

	got, skipped, err := NewClient(srv.URL, time.Second).Observations(context.Background(), []string{"btcinr", "ethinr"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCINR", got[0].AssetTicker)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Error(), "ethinr")
}
