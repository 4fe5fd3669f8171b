package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContactConfig holds where threshold alerts should be delivered
type ContactConfig struct {
	Email     string
	SMSNumber string
	UpdatedAt time.Time
}

// AlertRecord is a persisted threshold alert
type AlertRecord struct {
	ID          uuid.UUID
	StockID     int64
	CastingType string
	Quantity    int
	Threshold   int
	Message     string
	Email       string
	SMSNumber   string
	CreatedAt   time.Time
}

// NewAlertRecord builds an alert for an item that reached its threshold
func NewAlertRecord(item *StockItem, contact ContactConfig, at time.Time) *AlertRecord {
	return &AlertRecord{
		ID:          uuid.New(),
		StockID:     item.ID,
		CastingType: item.CastingType,
		Quantity:    item.Quantity,
		Threshold:   item.Threshold,
		Message: fmt.Sprintf("Stock %d (%s) is at %d units, threshold is %d",
			item.ID, item.CastingType, item.Quantity, item.Threshold),
		Email:     contact.Email,
		SMSNumber: contact.SMSNumber,
		CreatedAt: at.UTC(),
	}
}
