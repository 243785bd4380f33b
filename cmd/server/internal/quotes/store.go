package quotes

import (
	"errors"
	"math"
	"time"

	"sync"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// ErrUnknownSymbol is returned by ApplyDelta for symbols never created.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Rand is the randomness source used for quote baselines.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Clock provides the current time (deterministic in tests).
type Clock interface {
	Now() time.Time
}

// entry owns a single quote. The per-symbol mutex serializes mutations of
// that symbol without blocking writers of other symbols.
type entry struct {
	mu sync.Mutex
	q  models.Quote
}

// Store is the single source of truth for quote state. Quotes are created
// on first reference and never deleted during the process lifetime.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	rnd     Rand
	clock   Clock
}

func NewStore(rnd Rand, clock Clock) *Store {
	return &Store{
		entries: make(map[string]*entry),
		rnd:     rnd,
		clock:   clock,
	}
}

// Seed creates baseline quotes for any of the given symbols not yet known.
// Existing symbols are left untouched. Returns the created quotes.
func (s *Store) Seed(symbols []string) []models.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []models.Quote
	for _, sym := range symbols {
		if _, ok := s.entries[sym]; ok {
			continue
		}
		q := s.generate(sym)
		s.entries[sym] = &entry{q: q}
		created = append(created, q)
	}
	return created
}

// Get returns a copy of the quote for symbol, or false if unknown.
func (s *Store) Get(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	e, ok := s.entries[symbol]
	s.mu.RUnlock()
	if !ok {
		return models.Quote{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q, true
}

// GetOrCreate returns the quote for symbol, creating it with a randomized
// baseline if absent. The second return reports whether it was created.
func (s *Store) GetOrCreate(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	e, ok := s.entries[symbol]
	s.mu.RUnlock()
	if ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.q, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check: another goroutine may have created it meanwhile.
	if e, ok := s.entries[symbol]; ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.q, false
	}
	q := s.generate(symbol)
	s.entries[symbol] = &entry{q: q}
	return q, true
}

// ApplyDelta applies fn to the quote for symbol and re-derives the dependent
// fields (high/low envelope, avg, chg_p). Calls on different symbols run
// concurrently; calls on the same symbol are sequenced.
func (s *Store) ApplyDelta(symbol string, fn func(*models.Quote)) (models.Quote, error) {
	s.mu.RLock()
	e, ok := s.entries[symbol]
	s.mu.RUnlock()
	if !ok {
		return models.Quote{}, ErrUnknownSymbol
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	q := e.q
	fn(&q)
	normalize(&q)
	e.q = q
	return q, nil
}

// Known returns a snapshot of all known symbols.
func (s *Store) Known() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	syms := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		syms = append(syms, sym)
	}
	return syms
}

// generate builds a randomized baseline quote around a base price uniform in
// [90, 190). Callers must hold s.mu.
func (s *Store) generate(symbol string) models.Quote {
	base := s.rnd.Float64()*100 + 90
	q := models.Quote{
		Market:   "REG",
		Symbol:   symbol,
		ChgF:     Round2(s.rnd.Float64()*2 - 1),
		BuyVol:   int64(s.rnd.Intn(100)),
		Buy:      Round2(base - s.rnd.Float64()*2),
		Sell:     Round2(base + s.rnd.Float64()*2),
		SellVol:  int64(s.rnd.Intn(100)),
		TotalVol: int64(s.rnd.Intn(1000)),
		PClose:   Round2(base),
		High:     Round2(base + s.rnd.Float64()*5),
		Low:      Round2(base - s.rnd.Float64()*5),
		Trades:   int64(s.rnd.Intn(500)),
		LTime:    s.clock.Now().Format("15:04:05"),
		Open:     Round2(base),
	}
	normalize(&q)
	return q
}

// normalize re-derives the fields that depend on others: the high/low
// envelope must contain both sides, avg is the envelope midpoint, and chg_p
// follows from chg_f relative to the previous close.
func normalize(q *models.Quote) {
	q.High = Round2(math.Max(q.High, math.Max(q.Buy, q.Sell)))
	q.Low = Round2(math.Min(q.Low, math.Min(q.Buy, q.Sell)))
	q.Avg = Round2((q.High + q.Low) / 2)
	if q.PClose == 0 {
		q.ChgP = 0
	} else {
		q.ChgP = Round2(q.ChgF / q.PClose * 100)
	}
}

// Round2 rounds to two decimals, the display precision for all prices.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
