package alerts

import (
	"context"
	"fmt"
	"time"

	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/events"

	"go.uber.org/zap"
)

// Store is the persistence the alert service needs
type Store interface {
	GetContact(ctx context.Context) (domain.ContactConfig, error)
	SaveAlert(ctx context.Context, alert *domain.AlertRecord) error
}

// Service raises threshold alerts for stock items
type Service struct {
	store     Store
	publisher events.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new alert service
func NewService(store Store, publisher events.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate records and publishes an alert when the item is at or below its threshold.
// It returns nil when no alert was needed.
func (s *Service) Evaluate(ctx context.Context, item *domain.StockItem) (*domain.AlertRecord, error) {
	if !item.BelowThreshold() {
		return nil, nil
	}

	contact, err := s.store.GetContact(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contact config: %w", err)
	}

	alert := domain.NewAlertRecord(item, contact, s.now())
	if err := s.store.SaveAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}

	s.logger.Warn("Stock threshold alert raised",
		zap.String("alert_id", alert.ID.String()),
		zap.Int64("stock_id", item.ID),
		zap.Int("quantity", item.Quantity),
		zap.Int("threshold", item.Threshold),
		zap.Bool("email_configured", contact.Email != ""),
		zap.Bool("sms_configured", contact.SMSNumber != ""),
	)

	event := events.StockAlertRaisedEvent{
		AlertID:     alert.ID.String(),
		StockID:     alert.StockID,
		CastingType: alert.CastingType,
		Quantity:    alert.Quantity,
		Threshold:   alert.Threshold,
		Message:     alert.Message,
		Email:       alert.Email,
		SMSNumber:   alert.SMSNumber,
		OccurredAt:  alert.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish alert event", zap.Int64("stock_id", item.ID), zap.Error(err))
	}

	return alert, nil
}
