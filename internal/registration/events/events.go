// Package events publishes registration lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"nftgate/internal/platform/kafka/producer"
	"nftgate/internal/registration/models"
)

const (
	DefaultTopic = "nftgate.registrations"

	EventTypeRegistrationCreated = "registration.created"
)

type messageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes RegistrationCreated events keyed by wallet address,
// so all events for a wallet land on one partition.
type KafkaPublisher struct {
	producer messageProducer
	topic    string
}

func NewKafkaPublisher(p messageProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) PublishRegistrationCreated(ctx context.Context, event models.RegistrationCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal registration event: %w", err)
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.WalletAddress),
		Value: payload,
		Headers: map[string]string{
			"event_type": EventTypeRegistrationCreated,
			"event_id":   event.EventID,
		},
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish registration event: %w", err)
	}
	return nil
}

// NoopPublisher discards events; used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRegistrationCreated(context.Context, models.RegistrationCreated) error {
	return nil
}
