package kafka

import (
	"fmt"
	"strconv"
	"time"

	"stock-forecast-service/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// DeadLetterProducer forwards messages that exhausted their retries
type DeadLetterProducer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	topic    string
}

// NewDeadLetterProducer creates a producer for the dead letter topic
func NewDeadLetterProducer(cfg *config.Config, logger *zap.Logger) (*DeadLetterProducer, error) {
	logger.Info("🔌 Creating Kafka DLQ producer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("dlq_topic", cfg.DLQTopic),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = cfg.KafkaRetries
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Version = sarama.V2_8_0_0

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaConfig)
	if err != nil {
		logger.Error("❌ Failed to create Kafka DLQ producer",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return NewDeadLetterProducerWithProducer(producer, cfg.DLQTopic, logger), nil
}

// NewDeadLetterProducerWithProducer wraps an existing producer
func NewDeadLetterProducerWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *DeadLetterProducer {
	return &DeadLetterProducer{
		producer: producer,
		logger:   logger,
		topic:    topic,
	}
}

// Send copies the failed message to the DLQ topic, annotated with the failure
func (p *DeadLetterProducer) Send(message *sarama.ConsumerMessage, cause error) error {
	headers := make([]sarama.RecordHeader, 0, len(message.Headers)+4)
	for _, h := range message.Headers {
		if h != nil {
			headers = append(headers, *h)
		}
	}
	headers = append(headers,
		sarama.RecordHeader{Key: []byte("error"), Value: []byte(cause.Error())},
		sarama.RecordHeader{Key: []byte("original-topic"), Value: []byte(message.Topic)},
		sarama.RecordHeader{Key: []byte("original-partition"), Value: []byte(strconv.Itoa(int(message.Partition)))},
		sarama.RecordHeader{Key: []byte("original-offset"), Value: []byte(strconv.FormatInt(message.Offset, 10))},
	)

	dlqMessage := &sarama.ProducerMessage{
		Topic:   p.topic,
		Value:   sarama.ByteEncoder(message.Value),
		Headers: headers,
	}
	if message.Key != nil {
		dlqMessage.Key = sarama.ByteEncoder(message.Key)
	}

	partition, offset, err := p.producer.SendMessage(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	p.logger.Warn("Message sent to DLQ",
		zap.String("topic", message.Topic),
		zap.String("dlq_topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.Error(cause),
	)
	return nil
}

// Close closes the producer
func (p *DeadLetterProducer) Close() error {
	return p.producer.Close()
}
