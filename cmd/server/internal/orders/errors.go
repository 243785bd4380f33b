package orders

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidOrder is returned when a required field is missing or fails
	// normalization. Nothing is mutated.
	ErrInvalidOrder = errors.New("invalid order data")

	// ErrUnknownSymbol is returned when the order references a symbol the
	// quote store has never seen. Treated like an invalid order by callers.
	ErrUnknownSymbol = errors.New("symbol not found")
)

// RateBandError reports a rate outside the acceptance band derived from the
// current buy price.
type RateBandError struct {
	Rate  float64
	Lower float64
	Upper float64
}

func (e *RateBandError) Error() string {
	return "rate " + fmtFloat(e.Rate) + " is outside allowed range (" +
		fmtFloat(e.Lower) + " - " + fmtFloat(e.Upper) + ")"
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
