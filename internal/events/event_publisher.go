package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event type names carried in the event-type message header
const (
	EventTypeStockCreated          = "StockCreated"
	EventTypeStockQuantityUpdated  = "StockQuantityUpdated"
	EventTypeStockDeducted         = "StockDeducted"
	EventTypeStockThresholdUpdated = "StockThresholdUpdated"
	EventTypeStockDeleted          = "StockDeleted"
	EventTypeStockAlertRaised      = "StockAlertRaised"
	EventTypeStockUsageReported    = "StockUsageReported"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
	Close() error
}

// Stock domain events
type StockCreatedEvent struct {
	StockID     int64     `json:"stock_id"`
	CastingType string    `json:"casting_type"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type StockQuantityUpdatedEvent struct {
	StockID          int64     `json:"stock_id"`
	PreviousQuantity int       `json:"previous_quantity"`
	Quantity         int       `json:"quantity"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type StockDeductedEvent struct {
	StockID    int64     `json:"stock_id"`
	Used       int       `json:"used"`
	Remaining  int       `json:"remaining"`
	UsageDate  string    `json:"usage_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

type StockThresholdUpdatedEvent struct {
	StockID           int64     `json:"stock_id"`
	PreviousThreshold int       `json:"previous_threshold"`
	Threshold         int       `json:"threshold"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type StockDeletedEvent struct {
	StockID    int64     `json:"stock_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type StockAlertRaisedEvent struct {
	AlertID     string    `json:"alert_id"`
	StockID     int64     `json:"stock_id"`
	CastingType string    `json:"casting_type"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
	Message     string    `json:"message"`
	Email       string    `json:"email,omitempty"`
	SMSNumber   string    `json:"sms_number,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// StockUsageReportedEvent is consumed from the usage topic; producers outside
// this service report consumption with it.
type StockUsageReportedEvent struct {
	StockID int64 `json:"stock_id"`
	Used    int   `json:"used"`
}

// InMemoryEventPublisher records events when Kafka is disabled
type InMemoryEventPublisher struct {
	logger *zap.Logger
	mu     sync.Mutex
	events []interface{}
}

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger: logger,
		events: make([]interface{}, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()

	p.logger.Debug("Event published (in-memory)", zap.String("event-type", EventType(event)))
	return nil
}

// Events returns a snapshot of everything published so far
func (p *InMemoryEventPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]interface{}, len(p.events))
	copy(snapshot, p.events)
	return snapshot
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// EventType returns the header name of a domain event
func EventType(event interface{}) string {
	switch event.(type) {
	case StockCreatedEvent:
		return EventTypeStockCreated
	case StockQuantityUpdatedEvent:
		return EventTypeStockQuantityUpdated
	case StockDeductedEvent:
		return EventTypeStockDeducted
	case StockThresholdUpdatedEvent:
		return EventTypeStockThresholdUpdated
	case StockDeletedEvent:
		return EventTypeStockDeleted
	case StockAlertRaisedEvent:
		return EventTypeStockAlertRaised
	case StockUsageReportedEvent:
		return EventTypeStockUsageReported
	default:
		return "Unknown"
	}
}

// StockIDOf returns the stock an event belongs to, used as the partition key
func StockIDOf(event interface{}) (int64, bool) {
	switch e := event.(type) {
	case StockCreatedEvent:
		return e.StockID, true
	case StockQuantityUpdatedEvent:
		return e.StockID, true
	case StockDeductedEvent:
		return e.StockID, true
	case StockThresholdUpdatedEvent:
		return e.StockID, true
	case StockDeletedEvent:
		return e.StockID, true
	case StockAlertRaisedEvent:
		return e.StockID, true
	case StockUsageReportedEvent:
		return e.StockID, true
	}
	return 0, false
}
