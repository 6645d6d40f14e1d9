package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memArchive struct{ rows []models.PriceObservation }

func (a *memArchive) Init(context.Context) error { return nil }
func (a *memArchive) StoreBatch(_ context.Context, obs []models.PriceObservation) error {
	a.rows = append(a.rows, obs...)
	return nil
}
func (a *memArchive) Close() error { return nil }

func TestArchiveHandlerStoresPriceEvent(t *testing.T) {
	arch := &memArchive{}
	h := usecase.NewArchiveHandler("finpulse.prices", arch, nopMetrics{})
	assert.Equal(t, "finpulse.prices", h.Topic())

	in := obs(models.SourceCoinDCX, "BTCINR", "5012345.12", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	in.ID = 42
	b, err := json.Marshal(in)
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, arch.rows, 1)
	assert.Equal(t, uint64(42), arch.rows[0].ID)
	assert.True(t, in.Price.Equal(arch.rows[0].Price))
	assert.True(t, in.Timestamp.Equal(arch.rows[0].Timestamp))
}

func TestArchiveHandlerRejectsBadPayload(t *testing.T) {
	h := usecase.NewArchiveHandler("t", &memArchive{}, nopMetrics{})
	assert.Error(t, h.Handle(context.Background(), []byte(`{`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"asset_ticker":""}`)))
}
