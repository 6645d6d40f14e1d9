package repository

import (
	"context"
	"testing"
	"time"

	"FinPulse/internal/domain/models"
	pkgkafka "FinPulse/pkg/kafka"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topics []string
	msgs   [][]pkgkafka.Message
}

func (p *recordingProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	p.topics = append(p.topics, topic)
	p.msgs = append(p.msgs, msgs)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestKafkaPublisherKeysByTicker(t *testing.T) {
	rp := &recordingProducer{}
	pub := NewKafkaPublisher(rp, "prices", "opps")

	require.NoError(t, pub.PublishPrices(context.Background(), nil))
	assert.Empty(t, rp.topics)

	require.NoError(t, pub.PublishPrices(context.Background(), []models.PriceObservation{
		{ID: 1, AssetTicker: "BTCINR", Price: decimal.NewFromInt(1), Timestamp: time.Now()},
		{ID: 2, AssetTicker: "ETHINR", Price: decimal.NewFromInt(2), Timestamp: time.Now()},
	}))
	require.NoError(t, pub.PublishOpportunity(context.Background(), models.OpportunityEvent{ID: 42}))

	require.Equal(t, []string{"prices", "opps"}, rp.topics)
	assert.Equal(t, []byte("BTCINR"), rp.msgs[0][0].Key)
	assert.Equal(t, []byte("ETHINR"), rp.msgs[0][1].Key)
	assert.Equal(t, []byte("42"), rp.msgs[1][0].Key)
}

func TestClickHouseArchiveDDL(t *testing.T) {
	a := NewClickHouseArchive(nil, "finpulse", "price_ticks")
	stmts := a.SchemaStatements()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS finpulse.price_ticks")
	assert.Contains(t, stmts[1], "ReplacingMergeTree")
	assert.Equal(t, "INSERT INTO finpulse.price_ticks (row_id, ts, source, ticker, price, volume)", a.insertSQL())
}
