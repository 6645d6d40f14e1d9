package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordCycle("harvest", "ok")
	r.RecordCycle("harvest", "ok")
	r.RecordRows("price_data", "WazirX_API", 2)
	r.RecordRows("price_data", "WazirX_API", 0)
	r.RecordLastPrice("WazirX_API", "BTCINR", 5_000_000)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cycles.WithLabelValues("harvest", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rowsWritten.WithLabelValues("price_data", "WazirX_API")))
	assert.Equal(t, 5_000_000.0, testutil.ToFloat64(r.lastPrice.WithLabelValues("WazirX_API", "BTCINR")))
}
