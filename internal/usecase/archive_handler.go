package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	pkgkafka "FinPulse/pkg/kafka"
)

// ArchiveHandler consumes price events and writes them to the tick archive.
type ArchiveHandler struct {
	topic   string
	archive domrepo.TickArchive
	metrics domrepo.Metrics
}

func NewArchiveHandler(topic string, archive domrepo.TickArchive, metrics domrepo.Metrics) *ArchiveHandler {
	return &ArchiveHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *ArchiveHandler) Topic() string { return h.topic }

// Handle expects one JSON-encoded PriceObservation per message.
func (h *ArchiveHandler) Handle(ctx context.Context, b []byte) error {
	var obs models.PriceObservation
	if err := json.Unmarshal(b, &obs); err != nil {
		h.metrics.RecordError("archive_unmarshal")
		return fmt.Errorf("decode price event: %w", err)
	}
	if obs.AssetTicker == "" || obs.Timestamp.IsZero() {
		h.metrics.RecordError("archive_invalid")
		return fmt.Errorf("price event missing ticker or timestamp")
	}
	h.metrics.RecordLatency("archive_e2e_seconds", time.Since(obs.Timestamp).Seconds())

	start := time.Now()
	err := h.archive.StoreBatch(ctx, []models.PriceObservation{obs})
	h.metrics.RecordLatency("archive_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("archive_store")
		return err
	}
	h.metrics.RecordRows("price_ticks", obs.Source, 1)
	return nil
}

var _ pkgkafka.MessageHandler = (*ArchiveHandler)(nil)
