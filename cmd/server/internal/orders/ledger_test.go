package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/orders"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/repository"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

func TestLedger_SequentialIDs(t *testing.T) {
	ledger, err := orders.NewLedger(context.Background(), repository.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}

	for want := int64(1); want <= 5; want++ {
		o, err := ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7})
		if err != nil {
			t.Fatal(err)
		}
		if o.ID != want {
			t.Errorf("id = %d, want %d", o.ID, want)
		}
	}
}

// flakyStore fails the first N writes, then delegates to a memory store.
type flakyStore struct {
	*repository.MemoryStore
	failures int
}

func (f *flakyStore) Save(ctx context.Context, o *models.Order) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("store unavailable")
	}
	return f.MemoryStore.Save(ctx, o)
}

func TestLedger_FailedWriteDoesNotAdvanceCounter(t *testing.T) {
	store := &flakyStore{MemoryStore: repository.NewMemoryStore(), failures: 2}
	ledger, err := orders.NewLedger(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7}); err == nil {
			t.Fatal("expected failure")
		}
	}

	o, err := ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7})
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != 1 {
		t.Errorf("id after failed writes = %d, want 1", o.ID)
	}
}

func TestLedger_SeedsFromStoreMaxID(t *testing.T) {
	store := repository.NewMemoryStore()
	if err := store.Save(context.Background(), &models.Order{ID: 41, Symbol: "PSO", Account: 7}); err != nil {
		t.Fatal(err)
	}

	ledger, err := orders.NewLedger(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	o, err := ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7})
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != 42 {
		t.Errorf("id = %d, want 42", o.ID)
	}
}

func TestLedger_ConcurrentRecordsUniqueIDs(t *testing.T) {
	ledger, err := orders.NewLedger(context.Background(), repository.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}

	const n = 100
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- o.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
		if id < 1 || id > n {
			t.Errorf("id %d outside 1..%d (gap elsewhere)", id, n)
		}
	}
	if len(seen) != n {
		t.Errorf("recorded %d distinct ids, want %d", len(seen), n)
	}
}

func TestLedger_Queries(t *testing.T) {
	store := repository.NewMemoryStore()
	ledger, err := orders.NewLedger(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	// No prior trades: null sentinel, not an error.
	last, err := ledger.Last(context.Background(), 7, "PSO")
	if err != nil {
		t.Fatal(err)
	}
	if last != nil {
		t.Errorf("expected nil for empty history, got %+v", last)
	}

	ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7, Rate: 101})
	ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 7, Rate: 102})
	ledger.Record(context.Background(), models.Order{Symbol: "PPL", Account: 7, Rate: 55})
	ledger.Record(context.Background(), models.Order{Symbol: "PSO", Account: 8, Rate: 103})

	mine, err := ledger.ByAccount(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 3 {
		t.Errorf("account 7 has %d orders, want 3", len(mine))
	}

	last, err = ledger.Last(context.Background(), 7, "PSO")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Rate != 102 {
		t.Errorf("last trade = %+v, want rate 102", last)
	}
}
