package repository

import (
	"context"
	"fmt"

	"Midas/internal/domain/models"
	"Midas/internal/domain/repository"
	pkgkafka "Midas/pkg/kafka"
)

// KafkaEventPublisher publishes computed feature payloads to a Kafka topic so
// downstream consumers (dashboards, recorders) can follow the feature feed.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, payload *models.FeaturePayload) error {
	if payload == nil {
		return fmt.Errorf("payload is nil")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(payload.Ticker), payload); err != nil {
		return fmt.Errorf("publish features %s: %w", payload.Ticker, err)
	}
	return nil
}

// PublishMessage sends an arbitrary value to the given topic. It satisfies
// the logger's Publisher interface so aggregated error logs can ride the
// same producer.
func (p *KafkaEventPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopEventPublisher is used when kafka events are disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, *models.FeaturePayload) error { return nil }
func (NopEventPublisher) Close() error                                          { return nil }

var _ repository.EventPublisher = (*KafkaEventPublisher)(nil)
var _ repository.EventPublisher = NopEventPublisher{}
