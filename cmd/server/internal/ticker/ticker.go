package ticker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/quotes"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Sink receives the delta set produced by one tick, in production order.
// Implementations must not retain the slice past the call.
type Sink interface {
	PublishDeltas(ctx context.Context, deltas []models.Quote)
}

// update modes: which side of the book a tick touches
const (
	modeBuy = iota
	modeSell
	modeBoth
)

// Ticker mutates a bounded random subset of quotes on a fixed interval and
// fans the resulting delta set out to its sinks.
type Ticker struct {
	store      *quotes.Store
	sinks      []Sink
	logger     *zap.Logger
	interval   time.Duration
	maxSymbols int
	rnd        Rand
	clock      Clock
}

func New(store *quotes.Store, sinks []Sink, logger *zap.Logger, interval time.Duration, maxSymbols int, rnd Rand, clock Clock) *Ticker {
	return &Ticker{
		store:      store,
		sinks:      sinks,
		logger:     logger,
		interval:   interval,
		maxSymbols: maxSymbols,
		rnd:        rnd,
		clock:      clock,
	}
}

// Run fires ticks until ctx is cancelled. It never blocks on I/O itself;
// sinks are expected to do their own bounded work.
func (t *Ticker) Run(ctx context.Context) {
	t.logger.Info("Ticker started",
		zap.Duration("interval", t.interval),
		zap.Int("max_symbols", t.maxSymbols))

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Ticker stopped")
			return
		default:
			t.clock.Sleep(t.interval)
			if ctx.Err() != nil {
				t.logger.Info("Ticker stopped")
				return
			}
			deltas := t.Tick()
			if len(deltas) == 0 {
				continue
			}
			for _, sink := range t.sinks {
				sink.PublishDeltas(ctx, deltas)
			}
		}
	}
}

// Tick selects up to maxSymbols distinct known symbols and applies one
// bounded random mutation to each. Returns the post-mutation quotes.
func (t *Ticker) Tick() []models.Quote {
	syms := t.store.Known()
	if len(syms) == 0 {
		return nil
	}

	// Fisher-Yates, then take the head. Without replacement.
	for i := len(syms) - 1; i > 0; i-- {
		j := t.rnd.Intn(i + 1)
		syms[i], syms[j] = syms[j], syms[i]
	}
	count := t.maxSymbols
	if count > len(syms) {
		count = len(syms)
	}

	deltas := make([]models.Quote, 0, count)
	for _, sym := range syms[:count] {
		mode := t.rnd.Intn(3)
		q, err := t.store.ApplyDelta(sym, func(q *models.Quote) {
			t.mutate(q, mode)
		})
		if err != nil {
			// Symbols are never deleted, so a selected symbol stays known.
			t.logger.Error("Tick mutation failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		deltas = append(deltas, q)
	}
	return deltas
}

func (t *Ticker) mutate(q *models.Quote, mode int) {
	q.ChgF = quotes.Round2(q.ChgF + (t.rnd.Float64()-0.5)*0.5)
	q.PClose = quotes.Round2(q.PClose + (t.rnd.Float64()-0.5)*0.5)

	if mode == modeBuy || mode == modeBoth {
		q.Buy = quotes.Round2(q.Buy + (t.rnd.Float64()-0.5)*5)
		q.BuyVol += int64(t.rnd.Intn(5))
	}
	if mode == modeSell || mode == modeBoth {
		q.Sell = quotes.Round2(q.Sell + (t.rnd.Float64()-0.5)*5)
		q.SellVol += int64(t.rnd.Intn(5))
	}

	q.TotalVol += int64(t.rnd.Intn(500))
	q.Trades += int64(t.rnd.Intn(10))
	q.LTime = t.clock.Now().Format("15:04:05")
}
