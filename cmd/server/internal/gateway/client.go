package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/hub"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/orders"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/protocol"
)

const (
	maxMessageSize = 512 * 1024
)

// ClientAdapter pumps frames between one websocket connection and the hub.
// Inbound events on a single connection are handled sequentially, so a
// subscribe is always observed before a later placeOrder from the same
// connection.
type ClientAdapter struct {
	id     string
	conn   net.Conn
	hub    *hub.Hub
	orders *orders.Service
	logger *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClient(conn net.Conn, h *hub.Hub, svc *orders.Service, logger *zap.Logger) *ClientAdapter {
	return &ClientAdapter{
		id:         uuid.NewString(),
		conn:       conn,
		hub:        h,
		orders:     svc,
		logger:     logger,
		send:       make(chan []byte, 256),
		done:       make(chan struct{}),
		writeWait:  5 * time.Second,
		pongWait:   60 * time.Second,
		pingPeriod: 50 * time.Second,
	}
}

func (c *ClientAdapter) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *ClientAdapter) ID() string { return c.id }

// Close marks the connection as gone. Later sends are silently dropped, so
// an in-flight order still completes but its confirmation goes nowhere.
func (c *ClientAdapter) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *ClientAdapter) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("JSON Marshal Error", zap.Error(err))
		return
	}
	c.sendBytes(b)
}

func (c *ClientAdapter) sendBytes(b []byte) {
	select {
	case <-c.done:
		// Connection gone; drop.
	case c.send <- b:
	default:
		// Drop message if buffer full (Backpressure)
	}
}

func (c *ClientAdapter) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

	for {
		header, err := ws.ReadHeader(c.conn)
		if err != nil {
			break
		}

		if header.Length > int64(maxMessageSize) {
			c.logger.Warn("Msg too big", zap.Int64("size", header.Length))
			break
		}

		if !header.Fin {
			c.logger.Warn("Client sent fragmented message (not supported)")
			break
		}

		payload := make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			break
		}

		if header.Masked {
			ws.Cipher(payload, header.Mask, 0)
		}

		if header.OpCode == ws.OpClose {
			break
		}
		if header.OpCode == ws.OpPong {
			c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
			continue
		}

		if header.OpCode == ws.OpText {
			c.handleMessage(payload)
		}
	}
}

func (c *ClientAdapter) handleMessage(payload []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.SendJSON(protocol.NewOrderError("Invalid JSON"))
		return
	}

	switch env.Event {
	case protocol.EventSubscribe:
		var symbols []string
		if err := json.Unmarshal(env.Data, &symbols); err != nil {
			c.SendJSON(protocol.NewOrderError("Invalid symbols format"))
			return
		}
		c.hub.Subscribe(c, symbols)

	case protocol.EventPlaceOrder:
		var req protocol.PlaceOrderRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.SendJSON(protocol.NewOrderError("Invalid order data"))
			return
		}
		c.placeOrder(req)

	default:
		c.SendJSON(protocol.NewOrderError("Unknown event: " + env.Event))
	}
}

func (c *ClientAdapter) placeOrder(req protocol.PlaceOrderRequest) {
	order, err := c.orders.Place(context.Background(), orders.Request{
		Symbol:  req.Symbol,
		Volume:  float64(req.Volume),
		Rate:    float64(req.Rate),
		Side:    req.Type,
		Account: float64(req.Account),
	})
	if err != nil {
		c.SendJSON(protocol.NewOrderError(orderErrorMessage(err)))
		return
	}
	c.SendJSON(protocol.NewOrderConfirmation(orders.Confirmation(order), order))
}

// orderErrorMessage maps intake errors to the messages the terminal shows.
// Persistence failures are reported generically.
func orderErrorMessage(err error) string {
	var bandErr *orders.RateBandError
	switch {
	case errors.Is(err, orders.ErrInvalidOrder):
		return "Invalid order data"
	case errors.Is(err, orders.ErrUnknownSymbol), errors.As(err, &bandErr):
		return err.Error()
	default:
		return "Order could not be recorded"
	}
}

func (c *ClientAdapter) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			c.conn.Write(ws.CompiledClose)
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerText(c.conn, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}
