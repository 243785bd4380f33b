package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/repository"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

func TestMemoryStore_SaveAndQuery(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, Symbol: "PSO", Account: 7, Rate: 100, Timestamp: base},
		{ID: 2, Symbol: "PSO", Account: 7, Rate: 101, Timestamp: base.Add(time.Minute)},
		{ID: 3, Symbol: "PPL", Account: 7, Rate: 55, Timestamp: base.Add(2 * time.Minute)},
		{ID: 4, Symbol: "PSO", Account: 9, Rate: 102, Timestamp: base.Add(3 * time.Minute)},
	}
	for i := range orders {
		if err := store.Save(ctx, &orders[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ByAccount(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("ByAccount(7) = %d orders, want 3", len(got))
	}

	empty, err := store.ByAccount(ctx, 404)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ByAccount(404) = %v, want empty non-nil slice", empty)
	}

	last, err := store.Last(ctx, 7, "PSO")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.ID != 2 {
		t.Errorf("Last = %+v, want order 2", last)
	}

	none, err := store.Last(ctx, 7, "LUCK")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("Last for untraded symbol = %+v, want nil", none)
	}

	maxID, err := store.MaxID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if maxID != 4 {
		t.Errorf("MaxID = %d, want 4", maxID)
	}
}

func TestMemoryStore_EmptyMaxID(t *testing.T) {
	store := repository.NewMemoryStore()
	maxID, err := store.MaxID(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if maxID != 0 {
		t.Errorf("MaxID on empty store = %d, want 0", maxID)
	}
}
