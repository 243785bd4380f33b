package models

import "time"

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order is an accepted, filled trade record. Immutable once recorded.
type Order struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Volume    int64     `json:"volume"`
	Rate      float64   `json:"rate"`
	Type      string    `json:"type"` // "buy" or "sell"
	Account   int64     `json:"account"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	Counter   string    `json:"counter"`
	BRate     float64   `json:"b_rate"` // rate when Type == "buy", else 0
	SRate     float64   `json:"s_rate"` // rate when Type == "sell", else 0
	Ticket    string    `json:"ticket"`
	Action    string    `json:"action"` // only "Filled" is modeled
	TotalVol  int64     `json:"total_vol"`
	TotalVal  float64   `json:"total_val"` // Volume * Rate
	Trader    string    `json:"trader"`
	Inst      string    `json:"inst"`
	Remaining string    `json:"remaining"`
	Flag      string    `json:"flag"`
}
