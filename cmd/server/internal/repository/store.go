package repository

import (
	"context"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// OrderStore is the persistence contract behind the order ledger. A write
// either succeeds or reports failure once; the ledger never retries.
type OrderStore interface {
	Save(ctx context.Context, o *models.Order) error
	ByAccount(ctx context.Context, account int64) ([]models.Order, error)
	// Last returns the most recent order by timestamp for (account, symbol),
	// or (nil, nil) when none exists.
	Last(ctx context.Context, account int64, symbol string) (*models.Order, error)
	// MaxID returns the highest recorded order id, 0 when the store is empty.
	MaxID(ctx context.Context) (int64, error)
	Close() error
}
