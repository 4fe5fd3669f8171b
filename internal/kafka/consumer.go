package kafka

import (
	"context"
	"fmt"
	"time"

	"stock-forecast-service/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Processor handles one decoded message
type Processor interface {
	ProcessEvent(ctx context.Context, eventType string, eventData []byte) error
}

// DeadLetterSender receives messages that could not be processed
type DeadLetterSender interface {
	Send(message *sarama.ConsumerMessage, cause error) error
}

// Consumer reads usage reports from Kafka
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       *consumerGroupHandler
	logger        *zap.Logger
	config        *config.Config
	topics        []string
}

// NewConsumer creates a new Kafka consumer. dlq may be nil.
func NewConsumer(cfg *config.Config, processor Processor, dlq DeadLetterSender, logger *zap.Logger) (*Consumer, error) {
	logger.Info("🔌 Creating Kafka consumer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	saramaConfig.Metadata.RefreshFrequency = 10 * time.Minute
	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	consumerGroup, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaConfig)
	if err != nil {
		logger.Error("❌ Failed to create Kafka consumer group",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("✅ Kafka consumer group created successfully",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	return &Consumer{
		consumerGroup: consumerGroup,
		handler:       newConsumerGroupHandler(processor, dlq, cfg, logger),
		logger:        logger,
		config:        cfg,
		topics:        []string{cfg.KafkaTopicUsage},
	}, nil
}

// Start consumes until ctx is cancelled or the group fails
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Consumer error", zap.Error(err))
		}
	}()

	c.logger.Info("Kafka consumer started",
		zap.Strings("topics", c.topics),
		zap.String("group_id", c.config.KafkaGroupID),
	)

	for {
		if err := c.consumerGroup.Consume(ctx, c.topics, c.handler); err != nil {
			c.logger.Error("Error from consumer",
				zap.Error(err),
				zap.String("error_type", fmt.Sprintf("%T", err)),
			)
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

// consumerGroupHandler handles Kafka consumer group messages
type consumerGroupHandler struct {
	processor Processor
	dlq       DeadLetterSender
	logger    *zap.Logger
	config    *config.Config
	sleep     func(ctx context.Context, d time.Duration)
}

func newConsumerGroupHandler(processor Processor, dlq DeadLetterSender, cfg *config.Config, logger *zap.Logger) *consumerGroupHandler {
	return &consumerGroupHandler{
		processor: processor,
		dlq:       dlq,
		logger:    logger,
		config:    cfg,
		sleep:     sleepContext,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages()
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if !h.handleMessage(session.Context(), message) {
				return nil
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage reports whether the message is done with and may be marked.
// It returns false when ctx ends before processing settles, leaving the
// message for redelivery.
func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) bool {
	eventType := extractEventType(message.Headers)
	if eventType == "" {
		h.logger.Warn("Message without event type, skipping",
			zap.String("topic", message.Topic),
			zap.Int32("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return true
	}

	err := h.processWithRetry(ctx, eventType, message.Value)
	if err == nil {
		return true
	}
	if ctx.Err() != nil {
		h.logger.Warn("Processing interrupted by shutdown, leaving message for redelivery",
			zap.String("event_type", eventType),
			zap.Int32("partition", message.Partition),
			zap.Int64("offset", message.Offset),
			zap.Error(err),
		)
		return false
	}

	h.logger.Error("Failed to process event",
		zap.String("event_type", eventType),
		zap.String("topic", message.Topic),
		zap.Int64("offset", message.Offset),
		zap.Error(err),
	)

	if h.config.DeadLetterQueue && h.dlq != nil {
		if err := h.dlq.Send(message, err); err != nil {
			h.logger.Error("Failed to send to DLQ", zap.Error(err))
		}
	}
	return true
}

// processWithRetry retries with a linear delay; permanent failures return at once
func (h *consumerGroupHandler) processWithRetry(ctx context.Context, eventType string, eventData []byte) error {
	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(h.config.RetryDelayMs*attempt) * time.Millisecond
			h.logger.Info("Retrying event processing",
				zap.String("event_type", eventType),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			h.sleep(ctx, delay)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		err := h.processor.ProcessEvent(ctx, eventType, eventData)
		if err == nil {
			if attempt > 0 {
				h.logger.Info("Event processed successfully after retry",
					zap.String("event_type", eventType),
					zap.Int("attempts", attempt+1),
				)
			}
			return nil
		}

		lastErr = err
		if IsPermanent(err) {
			return err
		}

		h.logger.Warn("Event processing failed, will retry",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return fmt.Errorf("failed after %d attempts: %w", h.config.MaxRetries+1, lastErr)
}

// extractEventType extracts event type from Kafka message headers
func extractEventType(headers []*sarama.RecordHeader) string {
	for _, header := range headers {
		if header != nil && string(header.Key) == "event-type" {
			return string(header.Value)
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
