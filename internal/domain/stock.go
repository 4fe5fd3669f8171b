package domain

import (
	"time"
)

// StockItem represents the aggregate root for a tracked stock record
type StockItem struct {
	ID          int64
	CastingType string
	Quantity    int
	Threshold   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // For optimistic locking
}

// NewStockItem creates a new stock item
func NewStockItem(id int64, castingType string, quantity, threshold int) (*StockItem, error) {
	if quantity < 0 || threshold < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &StockItem{
		ID:          id,
		CastingType: castingType,
		Quantity:    quantity,
		Threshold:   threshold,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}, nil
}

// SetQuantity replaces the quantity on hand
func (s *StockItem) SetQuantity(quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	s.Quantity = quantity
	s.touch()
	return nil
}

// SetThreshold replaces the alert threshold
func (s *StockItem) SetThreshold(threshold int) error {
	if threshold < 0 {
		return ErrInvalidQuantity
	}
	s.Threshold = threshold
	s.touch()
	return nil
}

// Deduct removes used units from stock and returns the usage event to record.
// The item is left untouched when the deduction fails.
func (s *StockItem) Deduct(used int, at time.Time) (UsageEvent, error) {
	if used <= 0 {
		return UsageEvent{}, ErrInvalidQuantity
	}
	if used > s.Quantity {
		return UsageEvent{}, ErrInsufficientStock
	}
	s.Quantity -= used
	s.touch()
	return UsageEvent{
		StockID:      s.ID,
		Date:         DateOf(at),
		QuantityUsed: used,
	}, nil
}

// BelowThreshold reports whether the item needs a threshold alert
func (s *StockItem) BelowThreshold() bool {
	return s.Quantity <= s.Threshold
}

func (s *StockItem) touch() {
	s.UpdatedAt = time.Now().UTC()
	s.Version++
}

// Domain errors
var (
	ErrInsufficientStock = &DomainError{Message: "not enough stock available"}
	ErrInvalidQuantity   = &DomainError{Message: "quantity must not be negative"}
	ErrStockNotFound     = &DomainError{Message: "stock not found"}
	ErrDuplicateStock    = &DomainError{Message: "stock already exists"}
)

// DomainError represents a domain-level error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
