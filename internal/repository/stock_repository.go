package repository

import (
	"context"
	"errors"

	"stock-forecast-service/internal/domain"
)

// ErrOptimisticLockFailed is returned when a stock item changed between read and write
var ErrOptimisticLockFailed = errors.New("optimistic lock failed - version mismatch")

// StockRepository defines the persistence operations for stock, usage and alerts.
//
// Update and SaveDeduction expect the item version to have been bumped exactly
// once since it was read; the stored row must still carry the previous version.
type StockRepository interface {
	Create(ctx context.Context, item *domain.StockItem) error
	FindByID(ctx context.Context, id int64) (*domain.StockItem, error)
	List(ctx context.Context) ([]*domain.StockItem, error)
	Update(ctx context.Context, item *domain.StockItem) error
	Delete(ctx context.Context, id int64) error

	// SaveDeduction stores the new quantity and appends the usage event atomically
	SaveDeduction(ctx context.Context, item *domain.StockItem, event domain.UsageEvent) error
	UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error)

	SaveAlert(ctx context.Context, alert *domain.AlertRecord) error
	ListAlerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error)

	GetContact(ctx context.Context) (domain.ContactConfig, error)
	SaveContact(ctx context.Context, contact domain.ContactConfig) error

	Ping(ctx context.Context) error
	Close() error
}
