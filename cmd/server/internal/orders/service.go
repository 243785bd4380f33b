package orders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/quotes"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Fixed record fields the terminal expects on every fill.
const (
	defaultTicket = "1536"
	defaultTrader = "mem0B11"
	actionFilled  = "Filled"
)

// QuoteSource is the slice of the quote store order intake needs.
type QuoteSource interface {
	Get(symbol string) (models.Quote, bool)
	ApplyDelta(symbol string, fn func(*models.Quote)) (models.Quote, error)
}

// Service validates proposed orders against the live price band and records
// accepted ones in the ledger.
type Service struct {
	quotes QuoteSource
	ledger *Ledger
	logger *zap.Logger
	clock  func() time.Time
}

func NewService(quotes QuoteSource, ledger *Ledger, logger *zap.Logger) *Service {
	return &Service{
		quotes: quotes,
		ledger: ledger,
		logger: logger,
		clock:  time.Now,
	}
}

// Place runs the full order intake pipeline: normalize, band-check against
// the buy price snapshot, record, then bump the instrument's traded volume.
//
// The band is computed from one consistent snapshot of the quote, but a tick
// may still move the buy price between this check and the ledger write. That
// race is an accepted limitation of the band check: the order was valid
// against the price observed at validation time.
func (s *Service) Place(ctx context.Context, r Request) (models.Order, error) {
	req, err := normalize(r)
	if err != nil {
		return models.Order{}, err
	}

	q, ok := s.quotes.Get(req.Symbol)
	if !ok {
		return models.Order{}, lookupErr(req.Symbol)
	}

	b := band(q)
	if err := checkRate(req.Rate, b); err != nil {
		return models.Order{}, err
	}

	now := s.clock().UTC()
	order := models.Order{
		Symbol:    req.Symbol,
		Volume:    req.Volume,
		Rate:      req.Rate,
		Type:      req.Side,
		Account:   req.Account,
		Timestamp: now,
		Date:      now.Format("2006-01-02"),
		Ticket:    defaultTicket,
		Action:    actionFilled,
		TotalVol:  req.Volume,
		TotalVal:  quotes.Round2(float64(req.Volume) * req.Rate),
		Trader:    defaultTrader,
		Remaining: "0",
	}
	if req.Side == models.SideBuy {
		order.BRate = req.Rate
	} else {
		order.SRate = req.Rate
	}

	recorded, err := s.ledger.Record(ctx, order)
	if err != nil {
		return models.Order{}, err
	}

	// Reflect the fill in the instrument's running totals.
	if _, err := s.quotes.ApplyDelta(req.Symbol, func(q *models.Quote) {
		q.TotalVol += recorded.Volume
		q.Trades++
	}); err != nil {
		s.logger.Warn("Order recorded but volume update failed",
			zap.String("symbol", req.Symbol), zap.Error(err))
	}

	s.logger.Info("Order recorded",
		zap.Int64("id", recorded.ID),
		zap.String("symbol", recorded.Symbol),
		zap.String("type", recorded.Type),
		zap.Int64("volume", recorded.Volume),
		zap.Float64("rate", recorded.Rate),
		zap.Int64("account", recorded.Account))

	return recorded, nil
}

// Confirmation is the human-readable message sent back on a successful fill.
func Confirmation(o models.Order) string {
	return fmt.Sprintf("Order placed: %s %d of %s at %s",
		o.Type, o.Volume, o.Symbol, fmtFloat(o.Rate))
}
