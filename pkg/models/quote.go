package models

// Quote represents the current market state of one instrument.
// Field names mirror the terminal wire format, so json tags are load-bearing.
type Quote struct {
	Market        string  `json:"market"`
	Symbol        string  `json:"symbol"`
	ChgF          float64 `json:"chg_f"`
	BuyVol        int64   `json:"buy_vol"`
	Buy           float64 `json:"buy"`
	Sell          float64 `json:"sell"`
	SellVol       int64   `json:"sell_vol"`
	TotalVol      int64   `json:"total_vol"`
	ChgP          float64 `json:"chg_p"`
	PClose        float64 `json:"p_close"`
	Avg           float64 `json:"avg"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Trades        int64   `json:"trades"`
	AllShareValue float64 `json:"all_share_value"`
	LTime         string  `json:"l_time"` // HH:MM:SS, 24h
	Open          float64 `json:"open"`
}
