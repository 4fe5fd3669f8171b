package errors

import (
	"fmt"
	"net/http"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "InvalidRequest", "StockNotFound")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, validation info, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError", "InsufficientStock":
		return http.StatusBadRequest
	case "StockNotFound", "InsufficientData":
		return http.StatusNotFound
	case "DuplicateStock":
		return http.StatusConflict
	case "ServiceUnavailable":
		return http.StatusServiceUnavailable
	case "DatabaseError", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewStockNotFound(stockID int64) *StandardError {
	return NewStandardError("StockNotFound", "stock not found", fmt.Sprintf("Stock ID: %d", stockID))
}

func NewDuplicateStock(stockID int64) *StandardError {
	return NewStandardError("DuplicateStock", "stock already exists", fmt.Sprintf("Stock ID: %d", stockID))
}

func NewInsufficientStock(available, requested int) *StandardError {
	return NewStandardError("InsufficientStock", "not enough stock available",
		fmt.Sprintf("Available: %d, Requested: %d", available, requested))
}

func NewInsufficientData(stockID int64) *StandardError {
	return NewStandardError("InsufficientData", "not enough data to predict usage trend",
		fmt.Sprintf("Stock ID: %d", stockID))
}

func NewServiceUnavailable(component string, err error) *StandardError {
	return NewStandardError("ServiceUnavailable", fmt.Sprintf("%s unavailable", component), err.Error())
}

func NewDatabaseError(operation string, err error) *StandardError {
	return NewStandardError("DatabaseError", fmt.Sprintf("database operation failed: %s", operation), err.Error())
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}
