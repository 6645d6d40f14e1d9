package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestBuildOptions(t *testing.T) {
	cfg := &ClientConfig{Port: 9000}
	for _, opt := range []ClientOption{
		WithAddress("ch.local", 9440),
		WithDatabase("finpulse"),
		WithCredentials("writer", "pw"),
		WithHTTP(true),
		WithAsyncInsert(true, false),
		WithMaxExecutionTime(90 * time.Second),
	} {
		opt(cfg)
	}

	opts := buildOptions(cfg)
	assert.Equal(t, []string{"ch.local:9440"}, opts.Addr)
	assert.Equal(t, "finpulse", opts.Auth.Database)
	assert.Equal(t, "writer", opts.Auth.Username)
	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, 90, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 0, opts.Settings["wait_for_async_insert"])
}
