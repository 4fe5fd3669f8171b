package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/forecast"
	"stock-forecast-service/internal/services"
	"stock-forecast-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStockService is a mock implementation of StockService
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Create(ctx context.Context, id int64, castingType string, quantity, threshold int) (*domain.StockItem, error) {
	args := m.Called(ctx, id, castingType, quantity, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockItem), args.Error(1)
}

func (m *MockStockService) List(ctx context.Context) ([]*domain.StockItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StockItem), args.Error(1)
}

func (m *MockStockService) Get(ctx context.Context, id int64) (*domain.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockItem), args.Error(1)
}

func (m *MockStockService) UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.StockItem, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockItem), args.Error(1)
}

func (m *MockStockService) Deduct(ctx context.Context, id int64, used int) (*domain.StockItem, error) {
	args := m.Called(ctx, id, used)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockItem), args.Error(1)
}

func (m *MockStockService) UpdateThreshold(ctx context.Context, id int64, threshold int) (*domain.StockItem, error) {
	args := m.Called(ctx, id, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockItem), args.Error(1)
}

func (m *MockStockService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStockService) UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UsageEvent), args.Error(1)
}

func (m *MockStockService) Predict(ctx context.Context, id int64) (*services.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Prediction), args.Error(1)
}

func (m *MockStockService) HighRisk(ctx context.Context) ([]forecast.RiskEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.RiskEntry), args.Error(1)
}

func (m *MockStockService) Alerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlertRecord), args.Error(1)
}

func (m *MockStockService) GetContact(ctx context.Context) (domain.ContactConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ContactConfig), args.Error(1)
}

func (m *MockStockService) SetContact(ctx context.Context, email, smsNumber string) (domain.ContactConfig, error) {
	args := m.Called(ctx, email, smsNumber)
	return args.Get(0).(domain.ContactConfig), args.Error(1)
}

func (m *MockStockService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupTestRouter(service StockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	router := gin.New()
	router.Use(middleware.RecoveryHandler(logger))
	router.Use(middleware.ErrorHandler(logger))

	NewStockHandler(logger, service).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf.Write(raw)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleItem(id int64, quantity, threshold int) *domain.StockItem {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return &domain.StockItem{
		ID:          id,
		CastingType: "grey-iron",
		Quantity:    quantity,
		Threshold:   threshold,
		CreatedAt:   at,
		UpdatedAt:   at,
		Version:     1,
	}
}

func TestCreateStock_Success(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Create", mock.Anything, int64(42), "grey-iron", 500, 0).Return(sampleItem(42, 500, 0), nil)

	w := doRequest(router, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"stock_id":     42,
		"casting_type": "grey-iron",
		"quantity":     500,
		"threshold":    0,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp StockResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.StockID)
	assert.Equal(t, 500, resp.Quantity)
	assert.Equal(t, "2024-01-15T10:30:00Z", resp.CreatedAt)
	svc.AssertExpectations(t)
}

func TestCreateStock_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing quantity", map[string]interface{}{"stock_id": 1, "casting_type": "a", "threshold": 1}},
		{"negative quantity", map[string]interface{}{"stock_id": 1, "casting_type": "a", "quantity": -1, "threshold": 1}},
		{"negative threshold", map[string]interface{}{"stock_id": 1, "casting_type": "a", "quantity": 1, "threshold": -1}},
		{"missing casting type", map[string]interface{}{"stock_id": 1, "quantity": 1, "threshold": 1}},
		{"missing id", map[string]interface{}{"casting_type": "a", "quantity": 1, "threshold": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStockService)
			router := setupTestRouter(svc)

			w := doRequest(router, http.MethodPost, "/api/v1/stock", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "InvalidRequest", decodeError(t, w).Error)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateStock_Duplicate(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Create", mock.Anything, int64(7), "ductile", 10, 2).Return(nil, domain.ErrDuplicateStock)

	w := doRequest(router, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"stock_id": 7, "casting_type": "ductile", "quantity": 10, "threshold": 2,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DuplicateStock", decodeError(t, w).Error)
}

func TestListStock(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("List", mock.Anything).Return([]*domain.StockItem{sampleItem(1, 10, 2), sampleItem(2, 20, 4)}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/stock", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []StockResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, int64(1), resp[0].StockID)
	assert.Equal(t, int64(2), resp[1].StockID)
}

func TestListStock_EmptyIsArray(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("List", mock.Anything).Return([]*domain.StockItem{}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/stock", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRoutesMountedUnderBasePath(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("HighRisk", mock.Anything).Return([]forecast.RiskEntry{}, nil)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/v1/high_risk_stocks", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/high_risk_stocks", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/stock", nil).Code)
}

func TestGetStock_NotFound(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Get", mock.Anything, int64(99)).Return(nil, domain.ErrStockNotFound)

	w := doRequest(router, http.MethodGet, "/api/v1/stock/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "StockNotFound", resp.Error)
	assert.Equal(t, "Stock ID: 99", resp.Details)
}

func TestGetStock_InvalidID(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	for _, id := range []string{"abc", "0", "-3"} {
		w := doRequest(router, http.MethodGet, "/api/v1/stock/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUpdateQuantity_AllowsZero(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("UpdateQuantity", mock.Anything, int64(5), 0).Return(sampleItem(5, 0, 3), nil)

	w := doRequest(router, http.MethodPut, "/api/v1/stock/5", map[string]interface{}{"quantity": 0})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDeductStock_Success(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Deduct", mock.Anything, int64(5), 12).Return(sampleItem(5, 88, 10), nil)

	w := doRequest(router, http.MethodPut, "/api/v1/stock/5/deduct", map[string]interface{}{"used": 12})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StockResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 88, resp.Quantity)
}

func TestDeductStock_Insufficient(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Deduct", mock.Anything, int64(5), 50).Return(nil, domain.ErrInsufficientStock)
	svc.On("Get", mock.Anything, int64(5)).Return(sampleItem(5, 20, 10), nil)

	w := doRequest(router, http.MethodPut, "/api/v1/stock/5/deduct", map[string]interface{}{"used": 50})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "InsufficientStock", resp.Error)
	assert.Equal(t, "Available: 20, Requested: 50", resp.Details)
}

func TestDeductStock_RejectsNonPositive(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	for _, used := range []int{0, -4} {
		w := doRequest(router, http.MethodPut, "/api/v1/stock/5/deduct", map[string]interface{}{"used": used})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	svc.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeductStock_NotFound(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Deduct", mock.Anything, int64(8), 1).Return(nil, domain.ErrStockNotFound)

	w := doRequest(router, http.MethodPut, "/api/v1/stock/8/deduct", map[string]interface{}{"used": 1})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateThreshold(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("UpdateThreshold", mock.Anything, int64(3), 80).Return(sampleItem(3, 100, 80), nil)

	w := doRequest(router, http.MethodPut, "/api/v1/stock/3/threshold", map[string]interface{}{"threshold": 80})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Threshold updated successfully","stock_id":3,"new_threshold":80}`, w.Body.String())
}

func TestDeleteStock(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Delete", mock.Anything, int64(3)).Return(nil)
	svc.On("Delete", mock.Anything, int64(4)).Return(domain.ErrStockNotFound)

	w := doRequest(router, http.MethodDelete, "/api/v1/stock/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"stock deleted successfully","stock_id":3}`, w.Body.String())

	w = doRequest(router, http.MethodDelete, "/api/v1/stock/4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsageHistory(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("UsageHistory", mock.Anything, int64(3)).Return([]domain.UsageEvent{
		{StockID: 3, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), QuantityUsed: 4},
		{StockID: 3, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), QuantityUsed: 6},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/stock/3/usage", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"stock_id":3,"date":"2024-01-01","quantity_used":4},
		{"stock_id":3,"date":"2024-01-03","quantity_used":6}
	]`, w.Body.String())
}

func TestPredictDepletion(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	depletion := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	reorder := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	svc.On("Predict", mock.Anything, int64(3)).Return(&services.Prediction{
		StockID:           3,
		CastingType:       "grey-iron",
		CurrentQuantity:   4,
		Threshold:         2,
		AverageDailyUsage: 2,
		DepletionDate:     &depletion,
		ReorderDate:       &reorder,
		Trend: []forecast.DailyUsagePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ActualUsage: 2},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), ActualUsage: 2},
			{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), ActualUsage: 2, IsForecast: true},
			{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ActualUsage: 2, IsForecast: true},
		},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/stock/3/predict", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp PredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.PredictedDepletionDate)
	assert.Equal(t, "2024-01-05", *resp.PredictedDepletionDate)
	require.NotNil(t, resp.PredictedReorderDate)
	assert.Equal(t, "2024-01-04", *resp.PredictedReorderDate)
	require.Len(t, resp.UsageTrend, 4)
	assert.False(t, resp.UsageTrend[1].IsForecast)
	assert.True(t, resp.UsageTrend[2].IsForecast)
}

func TestPredictDepletion_NoRiskHasNullDate(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Predict", mock.Anything, int64(3)).Return(&services.Prediction{
		StockID:         3,
		CurrentQuantity: 40,
		Trend: []forecast.DailyUsagePoint{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/stock/3/predict", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "predicted_depletion_date")
	assert.Nil(t, raw["predicted_depletion_date"])
	assert.Nil(t, raw["predicted_reorder_date"])
}

func TestPredictDepletion_InsufficientData(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Predict", mock.Anything, int64(3)).Return(nil, forecast.ErrInsufficientData)

	w := doRequest(router, http.MethodGet, "/api/v1/stock/3/predict", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "InsufficientData", resp.Error)
	assert.Equal(t, "not enough data to predict usage trend", resp.Message)
}

func TestHighRiskStocks(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("HighRisk", mock.Anything).Return([]forecast.RiskEntry{
		{StockID: 2, CastingType: "b", DepletionDate: time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), DaysLeft: -2, AvgUsage: 1.33, CurrentStock: 0},
		{StockID: 1, CastingType: "a", DepletionDate: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), DaysLeft: 10, AvgUsage: 2, CurrentStock: 20},
	}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/high_risk_stocks", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []RiskEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, -2, resp[0].DaysLeft)
	assert.Equal(t, "2023-12-30", resp[0].DepletionDate)
	assert.Equal(t, 1.33, resp[0].AvgUsage)
	assert.Equal(t, 10, resp[1].DaysLeft)
}

func TestHighRiskStocks_StoreFailure(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("HighRisk", mock.Anything).Return(nil, errors.New("disk I/O error"))

	w := doRequest(router, http.MethodGet, "/api/v1/high_risk_stocks", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "InternalError", decodeError(t, w).Error)
}

func TestListAlerts(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	record := &domain.AlertRecord{
		ID:          uuid.New(),
		StockID:     4,
		CastingType: "a",
		Quantity:    1,
		Threshold:   5,
		Message:     "Stock 4 (a) is at 1 units, threshold is 5",
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	svc.On("Alerts", mock.Anything, 10).Return([]*domain.AlertRecord{record}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/alerts?limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []AlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, record.ID.String(), resp[0].ID)
	assert.Equal(t, "2024-01-02T03:04:05Z", resp[0].CreatedAt)
}

func TestListAlerts_InvalidLimit(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/alerts?limit=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", decodeError(t, w).Error)
}

func TestContact(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	saved := domain.ContactConfig{Email: "plant@example.com", SMSNumber: "+15550100"}
	svc.On("SetContact", mock.Anything, "plant@example.com", "+15550100").Return(saved, nil)
	svc.On("GetContact", mock.Anything).Return(saved, nil)

	w := doRequest(router, http.MethodPut, "/api/v1/config/contact", map[string]interface{}{
		"email": "plant@example.com", "sms_number": "+15550100",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Contact configuration updated","config":{"email":"plant@example.com","sms_number":"+15550100"}}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/v1/config/contact", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"plant@example.com","sms_number":"+15550100"}`, w.Body.String())
}

func TestContact_InvalidEmail(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	w := doRequest(router, http.MethodPut, "/api/v1/config/contact", map[string]interface{}{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SetContact", mock.Anything, mock.Anything, mock.Anything)
}

func TestHealthCheck(t *testing.T) {
	svc := new(MockStockService)
	router := setupTestRouter(svc)

	svc.On("Ping", mock.Anything).Return(nil).Once()
	w := doRequest(router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("Ping", mock.Anything).Return(fmt.Errorf("database is locked")).Once()
	w = doRequest(router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "ServiceUnavailable", decodeError(t, w).Error)
}
