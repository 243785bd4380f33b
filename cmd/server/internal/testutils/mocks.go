package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/protocol"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal  string
	Sent   []protocol.OutEnvelope
	Closed bool
	Mu     sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if env, ok := v.(protocol.OutEnvelope); ok {
		m.Sent = append(m.Sent, env)
	}
}

// StockUpdates returns the payloads of every stockUpdate event received.
func (m *MockClient) StockUpdates() [][]models.Quote {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	var out [][]models.Quote
	for _, env := range m.Sent {
		if env.Event != protocol.EventStockUpdate {
			continue
		}
		if quotes, ok := env.Data.([]models.Quote); ok {
			out = append(out, quotes)
		}
	}
	return out
}

func (m *MockClient) SentCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Sent)
}

// ScriptedRand replays preset values, falling back to fixed defaults once a
// script is exhausted (Intn -> 0, Float64 -> 0.5, i.e. a zero delta).
type ScriptedRand struct {
	Ints   []int
	Floats []float64
	ii, fi int
}

func (r *ScriptedRand) Intn(n int) int {
	if r.ii < len(r.Ints) {
		v := r.Ints[r.ii]
		r.ii++
		if v >= n {
			return n - 1
		}
		return v
	}
	return 0
}

func (r *ScriptedRand) Float64() float64 {
	if r.fi < len(r.Floats) {
		v := r.Floats[r.fi]
		r.fi++
		return v
	}
	return 0.5
}

// StubClock reports a fixed time and never sleeps.
type StubClock struct{ T time.Time }

func (c StubClock) Now() time.Time        { return c.T }
func (c StubClock) Sleep(d time.Duration) {}

// MockSink records every delta set it receives.
type MockSink struct {
	Mu     sync.Mutex
	Deltas [][]models.Quote
}

func (s *MockSink) PublishDeltas(ctx context.Context, deltas []models.Quote) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	cp := make([]models.Quote, len(deltas))
	copy(cp, deltas)
	s.Deltas = append(s.Deltas, cp)
}

// FailingOrderStore fails every write; reads behave like an empty store.
type FailingOrderStore struct{}

func (FailingOrderStore) Save(ctx context.Context, o *models.Order) error {
	return errors.New("store unavailable")
}

func (FailingOrderStore) ByAccount(ctx context.Context, account int64) ([]models.Order, error) {
	return nil, nil
}

func (FailingOrderStore) Last(ctx context.Context, account int64, symbol string) (*models.Order, error) {
	return nil, nil
}

func (FailingOrderStore) MaxID(ctx context.Context) (int64, error) { return 0, nil }

func (FailingOrderStore) Close() error { return nil }
