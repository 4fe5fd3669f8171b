package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/events"

	"go.uber.org/zap"
)

// StockDeductor applies reported usage to a stock item
type StockDeductor interface {
	Deduct(ctx context.Context, stockID int64, used int) (*domain.StockItem, error)
}

// EventProcessor turns usage topic messages into stock deductions
type EventProcessor struct {
	stock  StockDeductor
	logger *zap.Logger
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(stock StockDeductor, logger *zap.Logger) *EventProcessor {
	return &EventProcessor{
		stock:  stock,
		logger: logger,
	}
}

// ProcessEvent processes a single event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, eventData []byte) error {
	switch eventType {
	case events.EventTypeStockUsageReported:
		return p.processUsageReported(ctx, eventData)
	default:
		return permanent(fmt.Errorf("unknown event type: %s", eventType))
	}
}

func (p *EventProcessor) processUsageReported(ctx context.Context, eventData []byte) error {
	var event events.StockUsageReportedEvent
	if err := json.Unmarshal(eventData, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}
	if event.Used < 1 {
		return permanent(fmt.Errorf("invalid usage %d for stock %d", event.Used, event.StockID))
	}

	item, err := p.stock.Deduct(ctx, event.StockID, event.Used)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) ||
			errors.Is(err, domain.ErrInsufficientStock) ||
			errors.Is(err, domain.ErrInvalidQuantity) {
			return permanent(err)
		}
		return fmt.Errorf("failed to deduct stock: %w", err)
	}

	p.logger.Info("Usage applied",
		zap.Int64("stock_id", event.StockID),
		zap.Int("used", event.Used),
		zap.Int("remaining", item.Quantity),
	)
	return nil
}

// permanentError marks a failure that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// IsPermanent reports whether err should skip the retry loop
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
