package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/repository"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Ledger assigns monotonically increasing order ids and records orders
// through the persistence contract. The counter advances only after a
// successful write, so recorded ids are gapless and never repeat; a failed
// write leaves the counter where it was.
type Ledger struct {
	mu    sync.Mutex
	next  int64
	store repository.OrderStore
}

// NewLedger seeds the id counter from the store's highest recorded id so a
// restart over a durable store keeps ids strictly increasing.
func NewLedger(ctx context.Context, store repository.OrderStore) (*Ledger, error) {
	maxID, err := store.MaxID(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: seed id counter: %w", err)
	}
	return &Ledger{next: maxID + 1, store: store}, nil
}

// Record assigns the next id and persists the order. Id assignment and the
// write happen under one lock; concurrent callers are sequenced here, not in
// the store.
func (l *Ledger) Record(ctx context.Context, o models.Order) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o.ID = l.next
	if err := l.store.Save(ctx, &o); err != nil {
		return models.Order{}, fmt.Errorf("ledger: record order: %w", err)
	}
	l.next++
	return o, nil
}

// ByAccount returns all recorded orders for an account.
func (l *Ledger) ByAccount(ctx context.Context, account int64) ([]models.Order, error) {
	return l.store.ByAccount(ctx, account)
}

// Last returns the most recent order for (account, symbol), or (nil, nil)
// when the account has no trades in that symbol.
func (l *Ledger) Last(ctx context.Context, account int64, symbol string) (*models.Order, error) {
	return l.store.Last(ctx, account, symbol)
}
