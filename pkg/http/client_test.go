package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONSendsQueryAndUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "finpulse-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("finpulse-test"))
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, map[string][]string{"pageSize": {"5"}}, &out))
	assert.True(t, out.OK)
}

func TestSendAndParseReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient().GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.True(t, se.Temporary())
	assert.Equal(t, "slow down", se.Body)
}
