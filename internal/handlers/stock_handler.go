package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/forecast"
	"stock-forecast-service/internal/services"
	"stock-forecast-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StockService is the application boundary the handlers drive
type StockService interface {
	Create(ctx context.Context, id int64, castingType string, quantity, threshold int) (*domain.StockItem, error)
	List(ctx context.Context) ([]*domain.StockItem, error)
	Get(ctx context.Context, id int64) (*domain.StockItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.StockItem, error)
	Deduct(ctx context.Context, id int64, used int) (*domain.StockItem, error)
	UpdateThreshold(ctx context.Context, id int64, threshold int) (*domain.StockItem, error)
	Delete(ctx context.Context, id int64) error
	UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error)
	Predict(ctx context.Context, id int64) (*services.Prediction, error)
	HighRisk(ctx context.Context) ([]forecast.RiskEntry, error)
	Alerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error)
	GetContact(ctx context.Context) (domain.ContactConfig, error)
	SetContact(ctx context.Context, email, smsNumber string) (domain.ContactConfig, error)
	Ping(ctx context.Context) error
}

// StockHandler handles stock, forecast, alert and contact requests
type StockHandler struct {
	logger  *zap.Logger
	service StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(logger *zap.Logger, service StockService) *StockHandler {
	return &StockHandler{
		logger:  logger,
		service: service,
	}
}

// RegisterRoutes mounts the handler on a router group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.HealthCheck)

	stock := rg.Group("/stock")
	{
		stock.POST("", h.CreateStock)
		stock.GET("", h.ListStock)
		stock.GET("/:id", h.GetStock)
		stock.PUT("/:id", h.UpdateQuantity)
		stock.DELETE("/:id", h.DeleteStock)
		stock.PUT("/:id/deduct", h.DeductStock)
		stock.PUT("/:id/threshold", h.UpdateThreshold)
		stock.GET("/:id/usage", h.UsageHistory)
		stock.GET("/:id/predict", h.PredictDepletion)
	}

	rg.GET("/high_risk_stocks", h.HighRiskStocks)
	rg.GET("/alerts", h.ListAlerts)

	contact := rg.Group("/config/contact")
	{
		contact.GET("", h.GetContact)
		contact.PUT("", h.UpdateContact)
	}
}

// CreateStock godoc
// @Summary      Register a stock item
// @Description  Registers a stock item with a client supplied id, quantity on hand and alert threshold.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request  body      CreateStockRequest  true  "Stock item"
// @Success      201      {object}  StockResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      409      {object}  ErrorResponse  "Stock id already exists"
// @Failure      500      {object}  ErrorResponse
// @Router       /stock [post]
func (h *StockHandler) CreateStock(c *gin.Context) {
	var req CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req.StockID, req.CastingType, *req.Quantity, *req.Threshold)
	if err != nil {
		h.fail(c, req.StockID, err)
		return
	}

	c.JSON(http.StatusCreated, toStockResponse(item))
}

// ListStock godoc
// @Summary      List stock items
// @Description  Returns every stock item ordered by id.
// @Tags         stock
// @Produce      json
// @Success      200  {array}   StockResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /stock [get]
func (h *StockHandler) ListStock(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, 0, err)
		return
	}

	resp := make([]StockResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toStockResponse(item))
	}
	c.JSON(http.StatusOK, resp)
}

// GetStock godoc
// @Summary      Get a stock item
// @Tags         stock
// @Produce      json
// @Param        id   path      int  true  "Stock ID"
// @Success      200  {object}  StockResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stock/{id} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(item))
}

// UpdateQuantity godoc
// @Summary      Set the quantity on hand
// @Description  Replaces the quantity of a stock item and raises a threshold alert when it is at or below its threshold.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Stock ID"
// @Param        request  body      UpdateQuantityRequest  true  "New quantity"
// @Success      200      {object}  StockResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /stock/{id} [put]
func (h *StockHandler) UpdateQuantity(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	item, err := h.service.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(item))
}

// DeleteStock godoc
// @Summary      Delete a stock item
// @Description  Deletes a stock item together with its usage history.
// @Tags         stock
// @Produce      json
// @Param        id   path      int  true  "Stock ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stock/{id} [delete]
func (h *StockHandler) DeleteStock(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "stock deleted successfully", StockID: id})
}

// DeductStock godoc
// @Summary      Record usage
// @Description  Deducts used units and records them as today's usage.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Stock ID"
// @Param        request  body      DeductRequest  true  "Units used"
// @Success      200      {object}  StockResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request or not enough stock"
// @Failure      404      {object}  ErrorResponse
// @Router       /stock/{id}/deduct [put]
func (h *StockHandler) DeductStock(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	var req DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	item, err := h.service.Deduct(c.Request.Context(), id, req.Used)
	if err != nil {
		if stderrors.Is(err, domain.ErrInsufficientStock) {
			available := 0
			if current, getErr := h.service.Get(c.Request.Context(), id); getErr == nil {
				available = current.Quantity
			}
			c.Error(errors.NewInsufficientStock(available, req.Used))
			return
		}
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(item))
}

// UpdateThreshold godoc
// @Summary      Set the alert threshold
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "Stock ID"
// @Param        request  body      UpdateThresholdRequest  true  "New threshold"
// @Success      200      {object}  ThresholdUpdatedResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /stock/{id}/threshold [put]
func (h *StockHandler) UpdateThreshold(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	item, err := h.service.UpdateThreshold(c.Request.Context(), id, *req.Threshold)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, ThresholdUpdatedResponse{
		Message:      "Threshold updated successfully",
		StockID:      id,
		NewThreshold: item.Threshold,
	})
}

// UsageHistory godoc
// @Summary      Usage history
// @Description  Returns the recorded usage of a stock item in date order.
// @Tags         stock
// @Produce      json
// @Param        id   path      int  true  "Stock ID"
// @Success      200  {array}   UsageEventResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stock/{id}/usage [get]
func (h *StockHandler) UsageHistory(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	history, err := h.service.UsageHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err)
		return
	}

	resp := make([]UsageEventResponse, 0, len(history))
	for _, e := range history {
		resp = append(resp, UsageEventResponse{
			StockID:      e.StockID,
			Date:         domain.FormatDate(e.Date),
			QuantityUsed: e.QuantityUsed,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// PredictDepletion godoc
// @Summary      Predict depletion
// @Description  Forecasts when a stock item runs out from its average daily usage.
// @Description  The depletion date is null when usage is zero.
// @Tags         forecast
// @Produce      json
// @Param        id   path      int  true  "Stock ID"
// @Success      200  {object}  PredictionResponse
// @Failure      404  {object}  ErrorResponse  "Stock not found or not enough usage data"
// @Router       /stock/{id}/predict [get]
func (h *StockHandler) PredictDepletion(c *gin.Context) {
	id, ok := h.stockID(c)
	if !ok {
		return
	}

	prediction, err := h.service.Predict(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err)
		return
	}
	c.JSON(http.StatusOK, toPredictionResponse(prediction))
}

// HighRiskStocks godoc
// @Summary      High risk ranking
// @Description  Lists every stock item with a predicted depletion date, most urgent first.
// @Tags         forecast
// @Produce      json
// @Success      200  {array}   RiskEntryResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /high_risk_stocks [get]
func (h *StockHandler) HighRiskStocks(c *gin.Context) {
	entries, err := h.service.HighRisk(c.Request.Context())
	if err != nil {
		h.fail(c, 0, err)
		return
	}

	resp := make([]RiskEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toRiskEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// ListAlerts godoc
// @Summary      Threshold alerts
// @Description  Lists recorded threshold alerts, newest first.
// @Tags         alerts
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of alerts"
// @Success      200    {array}   AlertResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /alerts [get]
func (h *StockHandler) ListAlerts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.Error(errors.NewValidationError("limit must be a non-negative integer", "limit"))
			return
		}
		limit = n
	}

	records, err := h.service.Alerts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, 0, err)
		return
	}

	resp := make([]AlertResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toAlertResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetContact godoc
// @Summary      Get alert contact
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  ContactResponse
// @Router       /config/contact [get]
func (h *StockHandler) GetContact(c *gin.Context) {
	contact, err := h.service.GetContact(c.Request.Context())
	if err != nil {
		h.fail(c, 0, err)
		return
	}
	c.JSON(http.StatusOK, ContactResponse{Email: contact.Email, SMSNumber: contact.SMSNumber})
}

// UpdateContact godoc
// @Summary      Set alert contact
// @Description  Replaces the e-mail and SMS number threshold alerts are addressed to.
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        request  body      ContactRequest  true  "Contact"
// @Success      200      {object}  ContactUpdatedResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /config/contact [put]
func (h *StockHandler) UpdateContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	contact, err := h.service.SetContact(c.Request.Context(), req.Email, req.SMSNumber)
	if err != nil {
		h.fail(c, 0, err)
		return
	}
	c.JSON(http.StatusOK, ContactUpdatedResponse{
		Message: "Contact configuration updated",
		Config:  ContactResponse{Email: contact.Email, SMSNumber: contact.SMSNumber},
	})
}

// HealthCheck godoc
// @Summary      Health check endpoint
// @Description  Reports whether the service and its store are reachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func (h *StockHandler) HealthCheck(c *gin.Context) {
	if err := h.service.Ping(c.Request.Context()); err != nil {
		c.Error(errors.NewServiceUnavailable("store", err))
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "stock-forecast-service"})
}

func (h *StockHandler) stockID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.Error(errors.NewInvalidRequest("invalid stock id", fmt.Sprintf("id: %q", c.Param("id"))))
		return 0, false
	}
	return id, true
}

// fail maps service errors onto the standard error envelope
func (h *StockHandler) fail(c *gin.Context, id int64, err error) {
	switch {
	case stderrors.Is(err, domain.ErrStockNotFound):
		c.Error(errors.NewStockNotFound(id))
	case stderrors.Is(err, domain.ErrDuplicateStock):
		c.Error(errors.NewDuplicateStock(id))
	case stderrors.Is(err, domain.ErrInvalidQuantity):
		c.Error(errors.NewValidationError(err.Error(), "quantity"))
	case stderrors.Is(err, domain.ErrInsufficientStock):
		c.Error(errors.NewStandardError("InsufficientStock", err.Error(), ""))
	case stderrors.Is(err, forecast.ErrInsufficientData):
		c.Error(errors.NewInsufficientData(id))
	default:
		h.logger.Error("Request failed",
			zap.Int64("stock_id", id),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.Error(errors.NewInternalError("internal server error", err))
	}
}
