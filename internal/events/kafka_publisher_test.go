package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"stock-forecast-service/internal/config"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		KafkaTopicStock:  "inventory.stock",
		KafkaTopicAlerts: "inventory.alerts",
		KafkaAcks:        "all",
		KafkaRetries:     3,
		KafkaClientID:    "forecast-service",
	}
}

func header(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestEventTypeAndTopic(t *testing.T) {
	publisher := &KafkaEventPublisher{logger: zap.NewNop(), config: testConfig()}
	now := time.Now()

	testCases := []struct {
		event     interface{}
		eventType string
		topic     string
	}{
		{StockCreatedEvent{StockID: 1, OccurredAt: now}, "StockCreated", "inventory.stock"},
		{StockQuantityUpdatedEvent{StockID: 1}, "StockQuantityUpdated", "inventory.stock"},
		{StockDeductedEvent{StockID: 1}, "StockDeducted", "inventory.stock"},
		{StockThresholdUpdatedEvent{StockID: 1}, "StockThresholdUpdated", "inventory.stock"},
		{StockDeletedEvent{StockID: 1}, "StockDeleted", "inventory.stock"},
		{StockAlertRaisedEvent{StockID: 1}, "StockAlertRaised", "inventory.alerts"},
	}

	for _, tc := range testCases {
		t.Run(tc.eventType, func(t *testing.T) {
			assert.Equal(t, tc.eventType, EventType(tc.event))
			topic, err := publisher.topicForEvent(tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.topic, topic)

			id, ok := StockIDOf(tc.event)
			assert.True(t, ok)
			assert.Equal(t, int64(1), id)
		})
	}
}

func TestEventType_Unknown(t *testing.T) {
	publisher := &KafkaEventPublisher{logger: zap.NewNop(), config: testConfig()}

	assert.Equal(t, "Unknown", EventType("not an event"))
	_, err := publisher.topicForEvent("not an event")
	assert.Error(t, err)
	_, ok := StockIDOf(42)
	assert.False(t, ok)
}

func TestKafkaEventPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "inventory.stock" {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "17" {
			return fmt.Errorf("unexpected key %s", key)
		}
		if header(msg, "event-type") != "StockDeducted" {
			return fmt.Errorf("unexpected event-type %q", header(msg, "event-type"))
		}
		if header(msg, "event-id") == "" || header(msg, "timestamp") == "" {
			return errors.New("missing event-id or timestamp header")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded StockDeductedEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Used != 3 || decoded.Remaining != 7 {
			return fmt.Errorf("unexpected payload %+v", decoded)
		}
		return nil
	})

	publisher := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())
	err := publisher.Publish(context.Background(), StockDeductedEvent{
		StockID: 17, Used: 3, Remaining: 7, UsageDate: "2024-01-02", OccurredAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_RetriesThenSucceeds(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	producer.ExpectSendMessageAndSucceed()

	publisher := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())
	publisher.baseDelay = time.Millisecond

	err := publisher.Publish(context.Background(), StockAlertRaisedEvent{StockID: 2})

	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_GivesUp(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < publishAttempts; i++ {
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	publisher := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())
	publisher.baseDelay = time.Millisecond

	err := publisher.Publish(context.Background(), StockCreatedEvent{StockID: 3})

	assert.Error(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_UnknownEventIsNotSent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())

	err := publisher.Publish(context.Background(), struct{}{})

	assert.Error(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.Publish(ctx, StockDeletedEvent{StockID: 4})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProducerConfig(t *testing.T) {
	cfg := testConfig()
	producerConfig := NewProducerConfig(cfg)
	assert.Equal(t, sarama.WaitForAll, producerConfig.Producer.RequiredAcks)
	assert.True(t, producerConfig.Producer.Idempotent)
	assert.Equal(t, "forecast-service", producerConfig.ClientID)
	assert.NoError(t, producerConfig.Validate())

	cfg.KafkaAcks = "1"
	producerConfig = NewProducerConfig(cfg)
	assert.Equal(t, sarama.WaitForLocal, producerConfig.Producer.RequiredAcks)
	assert.False(t, producerConfig.Producer.Idempotent)
	assert.NoError(t, producerConfig.Validate())
}

func TestNewProducerConfig_NoRetries(t *testing.T) {
	cfg := testConfig()
	cfg.KafkaAcks = "all"
	cfg.KafkaRetries = 0

	producerConfig := NewProducerConfig(cfg)

	assert.Equal(t, sarama.WaitForAll, producerConfig.Producer.RequiredAcks)
	assert.False(t, producerConfig.Producer.Idempotent)
	assert.NoError(t, producerConfig.Validate())
}

func TestInMemoryEventPublisher(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())

	require.NoError(t, publisher.Publish(context.Background(), StockCreatedEvent{StockID: 1}))
	require.NoError(t, publisher.Publish(context.Background(), StockDeletedEvent{StockID: 1}))

	published := publisher.Events()
	require.Len(t, published, 2)
	assert.IsType(t, StockCreatedEvent{}, published[0])
	assert.IsType(t, StockDeletedEvent{}, published[1])
	assert.NoError(t, publisher.Close())
}
