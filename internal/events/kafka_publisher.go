package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"stock-forecast-service/internal/config"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishAttempts = 3

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer  sarama.SyncProducer
	logger    *zap.Logger
	config    *config.Config
	baseDelay time.Duration
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaEventPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, NewProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaEventPublisherWithProducer(producer, cfg, logger), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer
func NewKafkaEventPublisherWithProducer(producer sarama.SyncProducer, cfg *config.Config, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer:  producer,
		logger:    logger,
		config:    cfg,
		baseDelay: 100 * time.Millisecond,
	}
}

// NewProducerConfig builds the sarama producer settings shared by publishers
func NewProducerConfig(cfg *config.Config) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = cfg.KafkaClientID
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = cfg.KafkaRetries
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	switch cfg.KafkaAcks {
	case "0":
		config.Producer.RequiredAcks = sarama.NoResponse
		config.Producer.Idempotent = false
	case "1":
		config.Producer.RequiredAcks = sarama.WaitForLocal
		config.Producer.Idempotent = false
	default:
		config.Producer.RequiredAcks = sarama.WaitForAll
	}

	// sarama rejects an idempotent producer without retries
	if cfg.KafkaRetries < 1 {
		config.Producer.Idempotent = false
	}

	return config
}

// Publish publishes an event to Kafka, retrying with exponential backoff
func (p *KafkaEventPublisher) Publish(ctx context.Context, event interface{}) error {
	topic, err := p.topicForEvent(event)
	if err != nil {
		return fmt.Errorf("failed to determine topic: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	eventType := EventType(event)
	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(eventJSON),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}

	if stockID, ok := StockIDOf(event); ok {
		message.Key = sarama.StringEncoder(strconv.FormatInt(stockID, 10))
	}

	for attempt := 0; attempt < publishAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		partition, offset, err := p.producer.SendMessage(message)
		if err == nil {
			p.logger.Info("Event published to Kafka",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
				zap.String("event-type", eventType),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		p.logger.Warn("Failed to publish event to Kafka, retrying",
			zap.String("topic", topic),
			zap.String("event-type", eventType),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", publishAttempts),
		)

		if attempt < publishAttempts-1 {
			delay := p.baseDelay * time.Duration(1<<uint(attempt)) // 100ms, 200ms
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("failed to publish event to Kafka after %d attempts", publishAttempts)
}

// Close closes the Kafka producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) topicForEvent(event interface{}) (string, error) {
	switch event.(type) {
	case StockCreatedEvent, StockQuantityUpdatedEvent, StockDeductedEvent,
		StockThresholdUpdatedEvent, StockDeletedEvent:
		return p.config.KafkaTopicStock, nil
	case StockAlertRaisedEvent:
		return p.config.KafkaTopicAlerts, nil
	default:
		return "", fmt.Errorf("unknown event type: %T", event)
	}
}
