package handlers

import (
	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/forecast"
	"stock-forecast-service/internal/services"
)

// ErrorResponse represents an error response
// @Description Error response with code, message and details
type ErrorResponse struct {
	// Error code
	Error string `json:"error" example:"StockNotFound"`
	// Human readable message
	Message string `json:"message" example:"stock not found"`
	// Additional details
	Details string `json:"details" example:"Stock ID: 42"`
}

// MessageResponse represents a success response with a message
type MessageResponse struct {
	Message string `json:"message" example:"stock deleted successfully"`
	StockID int64  `json:"stock_id,omitempty" example:"42"`
}

// CreateStockRequest represents the request body for registering a stock item
// @Description Request to register a new stock item
type CreateStockRequest struct {
	// Client supplied stock identifier
	StockID int64 `json:"stock_id" binding:"required,min=1" example:"42"`

	// Casting type label
	CastingType string `json:"casting_type" binding:"required" example:"grey-iron"`

	// Units on hand (must be >= 0)
	Quantity *int `json:"quantity" binding:"required,min=0" example:"500"`

	// Alert threshold (must be >= 0)
	Threshold *int `json:"threshold" binding:"required,min=0" example:"50"`
}

// UpdateQuantityRequest replaces the quantity on hand
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0" example:"300"`
}

// DeductRequest records units used today
type DeductRequest struct {
	Used int `json:"used" binding:"required,min=1" example:"12"`
}

// UpdateThresholdRequest replaces the alert threshold
type UpdateThresholdRequest struct {
	Threshold *int `json:"threshold" binding:"required,min=0" example:"80"`
}

// ContactRequest sets where threshold alerts are delivered
type ContactRequest struct {
	Email     string `json:"email" binding:"omitempty,email" example:"plant@example.com"`
	SMSNumber string `json:"sms_number" example:"+15550100"`
}

// StockResponse represents a stock item
// @Description Stock item with quantity and threshold
type StockResponse struct {
	StockID     int64  `json:"stock_id" example:"42"`
	CastingType string `json:"casting_type" example:"grey-iron"`
	Quantity    int    `json:"quantity" example:"500"`
	Threshold   int    `json:"threshold" example:"50"`
	Version     int    `json:"version" example:"3"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2024-01-15T12:00:00Z"`
}

// ThresholdUpdatedResponse is returned after a threshold change
type ThresholdUpdatedResponse struct {
	Message      string `json:"message" example:"Threshold updated successfully"`
	StockID      int64  `json:"stock_id" example:"42"`
	NewThreshold int    `json:"new_threshold" example:"80"`
}

// UsageEventResponse is one recorded deduction
type UsageEventResponse struct {
	StockID      int64  `json:"stock_id" example:"42"`
	Date         string `json:"date" example:"2024-01-15"`
	QuantityUsed int    `json:"quantity_used" example:"12"`
}

// TrendPointResponse is one day of the combined actual and forecast series
type TrendPointResponse struct {
	Date        string  `json:"date" example:"2024-01-16"`
	ActualUsage float64 `json:"actual_usage" example:"11.5"`
	IsForecast  bool    `json:"is_forecast" example:"true"`
}

// PredictionResponse represents the depletion forecast of one stock item
// @Description Depletion forecast with the combined usage trend
type PredictionResponse struct {
	StockID           int64   `json:"stock_id" example:"42"`
	CastingType       string  `json:"casting_type" example:"grey-iron"`
	CurrentQuantity   int     `json:"current_quantity" example:"500"`
	Threshold         int     `json:"threshold" example:"50"`
	AverageDailyUsage float64 `json:"average_daily_usage" example:"11.5"`
	// Null when usage is zero or the horizon ends first
	PredictedDepletionDate *string              `json:"predicted_depletion_date" example:"2024-02-28"`
	PredictedReorderDate   *string              `json:"predicted_reorder_date" example:"2024-02-24"`
	UsageTrend             []TrendPointResponse `json:"usage_trend"`
}

// RiskEntryResponse is one row of the high risk ranking
type RiskEntryResponse struct {
	StockID       int64   `json:"stock_id" example:"42"`
	CastingType   string  `json:"casting_type" example:"grey-iron"`
	DepletionDate string  `json:"depletion_date" example:"2024-02-28"`
	DaysLeft      int     `json:"days_left" example:"12"`
	AvgUsage      float64 `json:"avg_usage" example:"11.5"`
	CurrentStock  int     `json:"current_stock" example:"140"`
}

// AlertResponse is a recorded threshold alert
type AlertResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StockID     int64  `json:"stock_id" example:"42"`
	CastingType string `json:"casting_type" example:"grey-iron"`
	Quantity    int    `json:"quantity" example:"40"`
	Threshold   int    `json:"threshold" example:"50"`
	Message     string `json:"message" example:"Stock 42 (grey-iron) is at 40 units, threshold is 50"`
	Email       string `json:"email" example:"plant@example.com"`
	SMSNumber   string `json:"sms_number" example:"+15550100"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T12:00:00Z"`
}

// ContactResponse is the alert contact configuration
type ContactResponse struct {
	Email     string `json:"email" example:"plant@example.com"`
	SMSNumber string `json:"sms_number" example:"+15550100"`
}

// ContactUpdatedResponse is returned after the contact configuration changes
type ContactUpdatedResponse struct {
	Message string          `json:"message" example:"Contact configuration updated"`
	Config  ContactResponse `json:"config"`
}

// HealthResponse reports service status
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"stock-forecast-service"`
}

const timestampLayout = "2006-01-02T15:04:05Z07:00"

func toStockResponse(item *domain.StockItem) StockResponse {
	return StockResponse{
		StockID:     item.ID,
		CastingType: item.CastingType,
		Quantity:    item.Quantity,
		Threshold:   item.Threshold,
		Version:     item.Version,
		CreatedAt:   item.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   item.UpdatedAt.UTC().Format(timestampLayout),
	}
}

func toPredictionResponse(p *services.Prediction) PredictionResponse {
	resp := PredictionResponse{
		StockID:           p.StockID,
		CastingType:       p.CastingType,
		CurrentQuantity:   p.CurrentQuantity,
		Threshold:         p.Threshold,
		AverageDailyUsage: p.AverageDailyUsage,
		UsageTrend:        make([]TrendPointResponse, 0, len(p.Trend)),
	}
	if p.DepletionDate != nil {
		d := domain.FormatDate(*p.DepletionDate)
		resp.PredictedDepletionDate = &d
	}
	if p.ReorderDate != nil {
		d := domain.FormatDate(*p.ReorderDate)
		resp.PredictedReorderDate = &d
	}
	for _, point := range p.Trend {
		resp.UsageTrend = append(resp.UsageTrend, TrendPointResponse{
			Date:        domain.FormatDate(point.Date),
			ActualUsage: point.ActualUsage,
			IsForecast:  point.IsForecast,
		})
	}
	return resp
}

func toRiskEntryResponse(e forecast.RiskEntry) RiskEntryResponse {
	return RiskEntryResponse{
		StockID:       e.StockID,
		CastingType:   e.CastingType,
		DepletionDate: domain.FormatDate(e.DepletionDate),
		DaysLeft:      e.DaysLeft,
		AvgUsage:      e.AvgUsage,
		CurrentStock:  e.CurrentStock,
	}
}

func toAlertResponse(a *domain.AlertRecord) AlertResponse {
	return AlertResponse{
		ID:          a.ID.String(),
		StockID:     a.StockID,
		CastingType: a.CastingType,
		Quantity:    a.Quantity,
		Threshold:   a.Threshold,
		Message:     a.Message,
		Email:       a.Email,
		SMSNumber:   a.SMSNumber,
		CreatedAt:   a.CreatedAt.UTC().Format(timestampLayout),
	}
}
