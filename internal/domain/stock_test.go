package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockItem(t *testing.T) {
	item, err := NewStockItem(7, "engine-block", 100, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, "engine-block", item.CastingType)
	assert.Equal(t, 100, item.Quantity)
	assert.Equal(t, 20, item.Threshold)
	assert.Equal(t, 1, item.Version)
	assert.False(t, item.CreatedAt.IsZero())
	assert.False(t, item.UpdatedAt.IsZero())
}

func TestNewStockItem_Error_Negative(t *testing.T) {
	_, err := NewStockItem(1, "x", -1, 0)
	assert.Equal(t, ErrInvalidQuantity, err)

	_, err = NewStockItem(1, "x", 0, -5)
	assert.Equal(t, ErrInvalidQuantity, err)
}

func TestDeduct_Success(t *testing.T) {
	item, _ := NewStockItem(1, "gear-housing", 50, 10)
	originalVersion := item.Version
	at := time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC)

	event, err := item.Deduct(20, at)

	assert.NoError(t, err)
	assert.Equal(t, 30, item.Quantity)
	assert.Equal(t, originalVersion+1, item.Version)
	assert.Equal(t, int64(1), event.StockID)
	assert.Equal(t, 20, event.QuantityUsed)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), event.Date)
}

func TestDeduct_Error_InsufficientStock(t *testing.T) {
	item, _ := NewStockItem(1, "gear-housing", 10, 0)
	originalVersion := item.Version

	_, err := item.Deduct(11, time.Now())

	assert.Equal(t, ErrInsufficientStock, err)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, originalVersion, item.Version)
}

func TestDeduct_Error_NonPositive(t *testing.T) {
	item, _ := NewStockItem(1, "gear-housing", 10, 0)

	_, err := item.Deduct(0, time.Now())

	assert.Equal(t, ErrInvalidQuantity, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestDeduct_AllRemainingStock(t *testing.T) {
	item, _ := NewStockItem(1, "valve", 10, 0)

	_, err := item.Deduct(10, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}

func TestSetQuantityAndThreshold(t *testing.T) {
	item, _ := NewStockItem(1, "valve", 10, 2)

	assert.NoError(t, item.SetQuantity(40))
	assert.NoError(t, item.SetThreshold(5))
	assert.Equal(t, 40, item.Quantity)
	assert.Equal(t, 5, item.Threshold)
	assert.Equal(t, 3, item.Version)

	assert.Equal(t, ErrInvalidQuantity, item.SetQuantity(-1))
	assert.Equal(t, ErrInvalidQuantity, item.SetThreshold(-1))
	assert.Equal(t, 40, item.Quantity)
	assert.Equal(t, 5, item.Threshold)
}

func TestBelowThreshold(t *testing.T) {
	item, _ := NewStockItem(1, "valve", 10, 10)
	assert.True(t, item.BelowThreshold())

	item.Quantity = 11
	assert.False(t, item.BelowThreshold())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 2, 27, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, DaysBetween(a, b))
	assert.Equal(t, -4, DaysBetween(b, a))
}

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestNewAlertRecord(t *testing.T) {
	item, _ := NewStockItem(3, "crankshaft", 4, 5)
	contact := ContactConfig{Email: "ops@example.com", SMSNumber: "+15550100"}

	alert := NewAlertRecord(item, contact, time.Now())

	assert.Equal(t, int64(3), alert.StockID)
	assert.Equal(t, "crankshaft", alert.CastingType)
	assert.Equal(t, 4, alert.Quantity)
	assert.Equal(t, 5, alert.Threshold)
	assert.Equal(t, "ops@example.com", alert.Email)
	assert.Equal(t, "+15550100", alert.SMSNumber)
	assert.Contains(t, alert.Message, "crankshaft")
}
