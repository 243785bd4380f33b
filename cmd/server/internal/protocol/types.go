package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// Realtime channel events. Client and server exchange Envelope frames.
const (
	EventSubscribe         = "subscribeToSymbols"
	EventPlaceOrder        = "placeOrder"
	EventStockUpdate       = "stockUpdate"
	EventOrderConfirmation = "orderConfirmation"
	EventOrderError        = "orderError"
)

// Envelope is an inbound frame; Data is decoded per-event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutEnvelope is an outbound frame.
type OutEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Number accepts a JSON number or a numeric string. Terminal clients send
// both interchangeably for volume/rate/account.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return fmt.Errorf("empty numeric string")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// PlaceOrderRequest is the payload of a placeOrder event.
type PlaceOrderRequest struct {
	Symbol  string `json:"symbol"`
	Volume  Number `json:"volume"`
	Rate    Number `json:"rate"`
	Type    string `json:"type"`
	Account Number `json:"account"`
}

type OrderConfirmation struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

type OrderError struct {
	Message string `json:"message"`
}

func NewStockUpdate(quotes []models.Quote) OutEnvelope {
	return OutEnvelope{Event: EventStockUpdate, Data: quotes}
}

func NewOrderConfirmation(message string, order models.Order) OutEnvelope {
	return OutEnvelope{Event: EventOrderConfirmation, Data: OrderConfirmation{Message: message, Order: order}}
}

func NewOrderError(message string) OutEnvelope {
	return OutEnvelope{Event: EventOrderError, Data: OrderError{Message: message}}
}
