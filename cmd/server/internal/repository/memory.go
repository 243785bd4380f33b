package repository

import (
	"context"
	"sync"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Compile-time check to ensure MemoryStore implements OrderStore
var _ OrderStore = (*MemoryStore)(nil)

// MemoryStore keeps orders in process memory. Used as the default driver and
// for tests; behavior is identical to the durable store.
type MemoryStore struct {
	mu     sync.RWMutex
	orders []models.Order
	maxID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *o)
	if o.ID > m.maxID {
		m.maxID = o.ID
	}
	return nil
}

func (m *MemoryStore) ByAccount(ctx context.Context, account int64) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, o := range m.orders {
		if o.Account == account {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) Last(ctx context.Context, account int64, symbol string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *models.Order
	for i := range m.orders {
		o := m.orders[i]
		if o.Account != account || o.Symbol != symbol {
			continue
		}
		if last == nil || !o.Timestamp.Before(last.Timestamp) {
			last = &o
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (m *MemoryStore) MaxID(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxID, nil
}

func (m *MemoryStore) Close() error { return nil }
