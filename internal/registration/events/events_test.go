package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nftgate/internal/platform/kafka/producer"
	"nftgate/internal/registration/models"
)

type recordingProducer struct {
	messages []*producer.Message
	err      error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.messages = append(p.messages, msg)
	return p.err
}

func TestKafkaPublisherWritesKeyedEvent(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaPublisher(prod, "")
	event := models.RegistrationCreated{
		EventID:       "evt-1",
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		RegisteredAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.PublishRegistrationCreated(context.Background(), event))
	require.Len(t, prod.messages, 1)

	msg := prod.messages[0]
	assert.Equal(t, DefaultTopic, msg.Topic)
	assert.Equal(t, []byte(event.WalletAddress), msg.Key)
	assert.Equal(t, EventTypeRegistrationCreated, msg.Headers["event_type"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "evt-1", decoded["event_id"])
	assert.Equal(t, event.WalletAddress, decoded["wallet_address"])
	assert.Equal(t, "2025-01-01T00:00:00Z", decoded["registered_at"])
}

func TestKafkaPublisherWrapsProducerError(t *testing.T) {
	pub := NewKafkaPublisher(&recordingProducer{err: errors.New("broker down")}, "custom")
	err := pub.PublishRegistrationCreated(context.Background(), models.RegistrationCreated{EventID: "e"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishRegistrationCreated(context.Background(), models.RegistrationCreated{}))
}
