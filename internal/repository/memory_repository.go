package repository

import (
	"context"
	"sort"
	"sync"

	"stock-forecast-service/internal/domain"
)

// InMemoryStockRepository keeps everything in process memory.
// Used when SQLite is disabled and in tests.
type InMemoryStockRepository struct {
	mu      sync.RWMutex
	items   map[int64]*domain.StockItem
	usage   map[int64][]domain.UsageEvent
	alerts  []*domain.AlertRecord
	contact domain.ContactConfig
}

// NewInMemoryStockRepository creates an empty in-memory repository
func NewInMemoryStockRepository() *InMemoryStockRepository {
	return &InMemoryStockRepository{
		items: make(map[int64]*domain.StockItem),
		usage: make(map[int64][]domain.UsageEvent),
	}
}

func (r *InMemoryStockRepository) Create(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return domain.ErrDuplicateStock
	}
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *InMemoryStockRepository) FindByID(ctx context.Context, id int64) (*domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, domain.ErrStockNotFound
	}
	found := *item
	return &found, nil
}

func (r *InMemoryStockRepository) List(ctx context.Context) ([]*domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.StockItem, 0, len(r.items))
	for _, item := range r.items {
		copied := *item
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *InMemoryStockRepository) Update(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.replace(item)
}

func (r *InMemoryStockRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrStockNotFound
	}
	delete(r.items, id)
	delete(r.usage, id)
	return nil
}

func (r *InMemoryStockRepository) SaveDeduction(ctx context.Context, item *domain.StockItem, event domain.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.replace(item); err != nil {
		return err
	}
	r.usage[item.ID] = append(r.usage[item.ID], event)
	return nil
}

// replace must be called with the write lock held
func (r *InMemoryStockRepository) replace(item *domain.StockItem) error {
	current, exists := r.items[item.ID]
	if !exists {
		return domain.ErrStockNotFound
	}
	if current.Version != item.Version-1 {
		return ErrOptimisticLockFailed
	}
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *InMemoryStockRepository) UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.items[id]; !exists {
		return nil, domain.ErrStockNotFound
	}
	history := make([]domain.UsageEvent, len(r.usage[id]))
	copy(history, r.usage[id])
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
	return history, nil
}

func (r *InMemoryStockRepository) SaveAlert(ctx context.Context, alert *domain.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *alert
	r.alerts = append(r.alerts, &stored)
	return nil
}

func (r *InMemoryStockRepository) ListAlerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alerts := make([]*domain.AlertRecord, 0, len(r.alerts))
	for i := len(r.alerts) - 1; i >= 0; i-- {
		if limit > 0 && len(alerts) == limit {
			break
		}
		copied := *r.alerts[i]
		alerts = append(alerts, &copied)
	}
	return alerts, nil
}

func (r *InMemoryStockRepository) GetContact(ctx context.Context) (domain.ContactConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contact, nil
}

func (r *InMemoryStockRepository) SaveContact(ctx context.Context, contact domain.ContactConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contact = contact
	return nil
}

func (r *InMemoryStockRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *InMemoryStockRepository) Close() error {
	return nil
}
