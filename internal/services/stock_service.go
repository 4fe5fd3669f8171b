package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stock-forecast-service/internal/alerts"
	"stock-forecast-service/internal/cache"
	"stock-forecast-service/internal/domain"
	"stock-forecast-service/internal/events"
	"stock-forecast-service/internal/forecast"
	"stock-forecast-service/internal/repository"

	"go.uber.org/zap"
)

// maxWriteAttempts bounds retries after an optimistic lock conflict
const maxWriteAttempts = 3

// Prediction is the depletion forecast of one stock item
type Prediction struct {
	StockID           int64                      `json:"stock_id"`
	CastingType       string                     `json:"casting_type"`
	CurrentQuantity   int                        `json:"current_quantity"`
	Threshold         int                        `json:"threshold"`
	AverageDailyUsage float64                    `json:"average_daily_usage"`
	DepletionDate     *time.Time                 `json:"depletion_date"`
	ReorderDate       *time.Time                 `json:"reorder_date"`
	Trend             []forecast.DailyUsagePoint `json:"trend"`
}

// StockService orchestrates the store, the forecasting core, alerts, events and the cache.
type StockService struct {
	repo       repository.StockRepository
	forecaster *forecast.Forecaster
	ranker     *forecast.RiskRanker
	alerts     *alerts.Service
	publisher  events.EventPublisher
	cache      cache.Cache // nil disables caching
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time

	// mu orders cache fills against mutations so a fill never stores a stale answer
	mu sync.RWMutex
}

// NewStockService creates a new stock service. cacheClient may be nil.
func NewStockService(
	repo repository.StockRepository,
	forecaster *forecast.Forecaster,
	ranker *forecast.RiskRanker,
	alertService *alerts.Service,
	publisher events.EventPublisher,
	cacheClient cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		repo:       repo,
		forecaster: forecaster,
		ranker:     ranker,
		alerts:     alertService,
		publisher:  publisher,
		cache:      cacheClient,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a new stock item
func (s *StockService) Create(ctx context.Context, id int64, castingType string, quantity, threshold int) (*domain.StockItem, error) {
	item, err := domain.NewStockItem(id, castingType, quantity, threshold)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = s.repo.Create(ctx, item)
	if err == nil {
		s.invalidate(ctx, id)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock created",
		zap.Int64("stock_id", item.ID),
		zap.String("casting_type", item.CastingType),
		zap.Int("quantity", item.Quantity),
		zap.Int("threshold", item.Threshold),
	)
	s.publish(ctx, events.StockCreatedEvent{
		StockID:     item.ID,
		CastingType: item.CastingType,
		Quantity:    item.Quantity,
		Threshold:   item.Threshold,
		OccurredAt:  item.CreatedAt,
	})
	return item, nil
}

// List returns all stock items ordered by id
func (s *StockService) List(ctx context.Context) ([]*domain.StockItem, error) {
	return s.repo.List(ctx)
}

// Get returns one stock item
func (s *StockService) Get(ctx context.Context, id int64) (*domain.StockItem, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateQuantity replaces the quantity on hand and evaluates the threshold alert
func (s *StockService) UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.StockItem, error) {
	var previous int
	item, err := s.mutate(ctx, id, func(item *domain.StockItem) error {
		previous = item.Quantity
		if err := item.SetQuantity(quantity); err != nil {
			return err
		}
		return s.repo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.StockQuantityUpdatedEvent{
		StockID:          id,
		PreviousQuantity: previous,
		Quantity:         item.Quantity,
		OccurredAt:       item.UpdatedAt,
	})
	s.evaluateAlert(ctx, item)
	return item, nil
}

// Deduct records used units as today's usage and lowers the quantity
func (s *StockService) Deduct(ctx context.Context, id int64, used int) (*domain.StockItem, error) {
	if used < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var event domain.UsageEvent
	item, err := s.mutate(ctx, id, func(item *domain.StockItem) error {
		var err error
		event, err = item.Deduct(used, s.now())
		if err != nil {
			return err
		}
		return s.repo.SaveDeduction(ctx, item, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock deducted",
		zap.Int64("stock_id", id),
		zap.Int("used", used),
		zap.Int("remaining", item.Quantity),
	)
	s.publish(ctx, events.StockDeductedEvent{
		StockID:    id,
		Used:       used,
		Remaining:  item.Quantity,
		UsageDate:  domain.FormatDate(event.Date),
		OccurredAt: item.UpdatedAt,
	})
	s.evaluateAlert(ctx, item)
	return item, nil
}

// UpdateThreshold replaces the alert threshold
func (s *StockService) UpdateThreshold(ctx context.Context, id int64, threshold int) (*domain.StockItem, error) {
	var previous int
	item, err := s.mutate(ctx, id, func(item *domain.StockItem) error {
		previous = item.Threshold
		if err := item.SetThreshold(threshold); err != nil {
			return err
		}
		return s.repo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.StockThresholdUpdatedEvent{
		StockID:           id,
		PreviousThreshold: previous,
		Threshold:         item.Threshold,
		OccurredAt:        item.UpdatedAt,
	})
	return item, nil
}

// Delete removes a stock item and its usage history
func (s *StockService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	err := s.repo.Delete(ctx, id)
	if err == nil {
		s.invalidate(ctx, id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("Stock deleted", zap.Int64("stock_id", id))
	s.publish(ctx, events.StockDeletedEvent{StockID: id, OccurredAt: s.now().UTC()})
	return nil
}

// UsageHistory returns the recorded usage of a stock item in date order
func (s *StockService) UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error) {
	return s.repo.UsageHistory(ctx, id)
}

// Predict forecasts when a stock item will run out. It returns
// forecast.ErrInsufficientData when its usage spans fewer than two dates.
func (s *StockService) Predict(ctx context.Context, id int64) (*Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := cache.ForecastKey(id)
	if s.cache != nil {
		var cached Prediction
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", key))
			return &cached, nil
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.UsageHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.forecaster.Predict(history, item.Quantity, item.Threshold)
	if err != nil {
		return nil, err
	}

	prediction := &Prediction{
		StockID:           item.ID,
		CastingType:       item.CastingType,
		CurrentQuantity:   item.Quantity,
		Threshold:         item.Threshold,
		AverageDailyUsage: result.AverageDailyUsage,
		DepletionDate:     result.DepletionDate,
		ReorderDate:       result.ReorderDate,
		Trend:             result.Trend,
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, prediction, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache prediction", zap.String("key", key), zap.Error(err))
		}
	}
	return prediction, nil
}

// HighRisk ranks every stock item that will run out, most urgent first
func (s *StockService) HighRisk(ctx context.Context) ([]forecast.RiskEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := domain.DateOf(s.now())
	key := cache.RiskRankingKey(today)
	if s.cache != nil {
		var cached []forecast.RiskEntry
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	stock, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]forecast.Item, 0, len(stock))
	for _, st := range stock {
		history, err := s.repo.UsageHistory(ctx, st.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStockNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load usage for stock %d: %w", st.ID, err)
		}
		items = append(items, forecast.Item{
			StockID:     st.ID,
			CastingType: st.CastingType,
			Quantity:    st.Quantity,
			Threshold:   st.Threshold,
			History:     history,
		})
	}

	entries := s.ranker.Rank(items, today)
	s.logger.Debug("High risk ranking computed",
		zap.Int("items", len(items)),
		zap.Int("at_risk", len(entries)),
	)

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, entries, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache ranking", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

// Alerts returns recorded threshold alerts, newest first. limit <= 0 returns all.
func (s *StockService) Alerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error) {
	return s.repo.ListAlerts(ctx, limit)
}

// GetContact returns where alerts are delivered
func (s *StockService) GetContact(ctx context.Context) (domain.ContactConfig, error) {
	return s.repo.GetContact(ctx)
}

// SetContact replaces the alert contact configuration
func (s *StockService) SetContact(ctx context.Context, email, smsNumber string) (domain.ContactConfig, error) {
	contact := domain.ContactConfig{
		Email:     email,
		SMSNumber: smsNumber,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveContact(ctx, contact); err != nil {
		return domain.ContactConfig{}, err
	}
	s.logger.Info("Contact configuration updated",
		zap.Bool("email_configured", email != ""),
		zap.Bool("sms_configured", smsNumber != ""),
	)
	return contact, nil
}

// Ping checks the store
func (s *StockService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// mutate loads the item, applies write and retries on optimistic lock conflicts
func (s *StockService) mutate(ctx context.Context, id int64, write func(item *domain.StockItem) error) (*domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		item, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		err = write(item)
		if err == nil {
			s.invalidate(ctx, id)
			return item, nil
		}
		if !errors.Is(err, repository.ErrOptimisticLockFailed) {
			return nil, err
		}

		lastErr = err
		s.logger.Warn("Optimistic lock failed, will retry",
			zap.Int64("stock_id", id),
			zap.Int("attempt", attempt),
		)
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxWriteAttempts, lastErr)
}

// invalidate drops cached answers a mutation of id can change. Caller holds mu.
func (s *StockService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ForecastKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate forecast cache", zap.Int64("stock_id", id), zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, cache.RiskRankingKeyPrefix+"*"); err != nil {
		s.logger.Warn("Failed to invalidate ranking cache", zap.Error(err))
	}
}

func (s *StockService) evaluateAlert(ctx context.Context, item *domain.StockItem) {
	if s.alerts == nil {
		return
	}
	if _, err := s.alerts.Evaluate(ctx, item); err != nil {
		s.logger.Error("Failed to evaluate threshold alert", zap.Int64("stock_id", item.ID), zap.Error(err))
	}
}

func (s *StockService) publish(ctx context.Context, event interface{}) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event-type", events.EventType(event)),
			zap.Error(err),
		)
	}
}
