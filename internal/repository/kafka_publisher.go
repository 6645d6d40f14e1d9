package repository

import (
	"context"
	"strconv"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/domain/repository"
	pkgkafka "FinPulse/pkg/kafka"
)

// BatchProducer is the subset of pkg/kafka.Producer the publisher needs.
type BatchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher publishes committed price observations and opportunities.
// Price events are keyed by ticker; opportunity events by id.
type KafkaPublisher struct {
	producer         BatchProducer
	priceTopic       string
	opportunityTopic string
}

func NewKafkaPublisher(producer BatchProducer, priceTopic, opportunityTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, priceTopic: priceTopic, opportunityTopic: opportunityTopic}
}

func (p *KafkaPublisher) PublishPrices(ctx context.Context, obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{Key: []byte(o.AssetTicker), Value: o}
	}
	return p.producer.PublishBatch(ctx, p.priceTopic, msgs)
}

func (p *KafkaPublisher) PublishOpportunity(ctx context.Context, ev models.OpportunityEvent) error {
	return p.producer.PublishBatch(ctx, p.opportunityTopic, []pkgkafka.Message{{
		Key:   []byte(strconv.FormatUint(ev.ID, 10)),
		Value: ev,
	}})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPrices(context.Context, []models.PriceObservation) error    { return nil }
func (NopPublisher) PublishOpportunity(context.Context, models.OpportunityEvent) error { return nil }
func (NopPublisher) Close() error                                                      { return nil }

var (
	_ repository.EventPublisher = (*KafkaPublisher)(nil)
	_ repository.EventPublisher = NopPublisher{}
)
