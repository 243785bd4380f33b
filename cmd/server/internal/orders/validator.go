package orders

import (
	"fmt"
	"math"
	"strings"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/quotes"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Request is a proposed order before validation. Volume and Account arrive
// as floats because the wire format tolerates numeric strings and numbers;
// normalization requires them to be positive integers.
type Request struct {
	Symbol  string
	Volume  float64
	Rate    float64
	Side    string
	Account float64
}

// request is a normalized, accepted order request.
type request struct {
	Symbol  string
	Volume  int64
	Rate    float64
	Side    string
	Account int64
}

// Band is the acceptable rate range around the current buy price.
type Band struct {
	Lower float64
	Upper float64
}

// normalize validates field presence and shape. It does not consult quote
// state.
func normalize(r Request) (request, error) {
	sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
	if sym == "" {
		return request{}, ErrInvalidOrder
	}

	side := strings.ToLower(strings.TrimSpace(r.Side))
	if side != models.SideBuy && side != models.SideSell {
		return request{}, ErrInvalidOrder
	}

	if r.Volume <= 0 || r.Volume != math.Trunc(r.Volume) {
		return request{}, ErrInvalidOrder
	}
	if r.Rate <= 0 {
		return request{}, ErrInvalidOrder
	}
	if r.Account <= 0 || r.Account != math.Trunc(r.Account) {
		return request{}, ErrInvalidOrder
	}

	return request{
		Symbol:  sym,
		Volume:  int64(r.Volume),
		Rate:    r.Rate,
		Side:    side,
		Account: int64(r.Account),
	}, nil
}

// band computes the inclusive acceptance band from the quote's current buy
// price, rounded to display precision.
func band(q models.Quote) Band {
	return Band{
		Lower: quotes.Round2(q.Buy * 0.9),
		Upper: quotes.Round2(q.Buy * 1.1),
	}
}

// checkRate rejects rates strictly outside the band.
func checkRate(rate float64, b Band) error {
	if rate < b.Lower || rate > b.Upper {
		return &RateBandError{Rate: rate, Lower: b.Lower, Upper: b.Upper}
	}
	return nil
}

// lookupErr wraps an unknown symbol with the offending name.
func lookupErr(symbol string) error {
	return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
}
