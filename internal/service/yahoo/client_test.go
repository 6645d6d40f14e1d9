package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"TCS.NS"},
"timestamp":[1717200000,1717286400,1717372800],
"indicators":{"quote":[{"close":[3800.5,null,3825.25],"volume":[1000,null,1500]}]}}],"error":null}}`

func newServer(t *testing.T, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestBarSkipsMissingClose(t *testing.T) {
	srv := newServer(t, chartBody, func(r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
	})

	bar, ok, err := NewClient(srv.URL, time.Second).LatestBar(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3825.25, *bar.Close)
	assert.Equal(t, 1500.0, *bar.Volume)
	assert.Equal(t, time.Unix(1717372800, 0).UTC(), bar.Time)
}

func TestLatestBarEmptyResult(t *testing.T) {
	srv := newServer(t, `{"chart":{"result":[],"error":null}}`, nil)

	_, ok, err := NewClient(srv.URL, time.Second).LatestBar(context.Background(), "NOPE.NS")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDailyClosesDropsNulls(t *testing.T) {
	srv := newServer(t, chartBody, func(r *http.Request) {
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
	})

	pts, err := NewClient(srv.URL, time.Second).DailyCloses(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 3800.5, pts[0].Price)
	assert.Equal(t, 3825.25, pts[1].Price)
}

func TestChartErrorPayload(t *testing.T) {
	srv := newServer(t, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, nil)

	_, err := NewClient(srv.URL, time.Second).DailyCloses(context.Background(), "GONE.NS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}
