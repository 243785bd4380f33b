package hub

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/protocol"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

type ClientInterface interface {
	ID() string
	SendJSON(v interface{})
	Close()
}

// Quotes is the slice of the quote store the hub needs.
type Quotes interface {
	GetOrCreate(symbol string) (models.Quote, bool)
}

// Hub owns every live connection's subscription set and fans tick deltas out
// to the connections whose sets intersect them.
type Hub struct {
	mu         sync.RWMutex
	clientSubs map[ClientInterface]map[string]bool

	quotes Quotes
	logger *zap.Logger
}

func NewHub(quotes Quotes, logger *zap.Logger) *Hub {
	return &Hub{
		clientSubs: make(map[ClientInterface]map[string]bool),
		quotes:     quotes,
		logger:     logger,
	}
}

// Register creates an empty subscription set for the connection.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clientSubs[client]; !ok {
		h.clientSubs[client] = make(map[string]bool)
	}
}

// Unregister removes the connection and all its memberships immediately.
// A Subscribe racing with this call must not resurrect the set.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	delete(h.clientSubs, client)
	h.mu.Unlock()
	client.Close()
}

// Subscribe normalizes the symbols, adds them to the connection's set and
// creates any unknown ones in the quote store. Newly created quotes are
// pushed to the caller right away so it does not wait for the next tick.
func (h *Hub) Subscribe(client ClientInterface, symbols []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clientSubs[client]
	if !ok {
		// Client already disconnected; do not recreate its state.
		return
	}

	var created []models.Quote
	for _, raw := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}
		subs[sym] = true
		if q, isNew := h.quotes.GetOrCreate(sym); isNew {
			created = append(created, q)
		}
	}

	if len(created) > 0 {
		client.SendJSON(protocol.NewStockUpdate(created))
	}
}

// SymbolsOf returns a snapshot of the connection's subscription set.
func (h *Hub) SymbolsOf(client ClientInterface) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.clientSubs[client]
	out := make([]string, 0, len(subs))
	for sym := range subs {
		out = append(out, sym)
	}
	return out
}

// PublishDeltas delivers to each connection exactly the subset of the delta
// set it subscribed to, preserving delta order. Connections with an empty
// intersection receive nothing.
func (h *Hub) PublishDeltas(ctx context.Context, deltas []models.Quote) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client, subs := range h.clientSubs {
		var filtered []models.Quote
		for _, q := range deltas {
			if subs[q.Symbol] {
				filtered = append(filtered, q)
			}
		}
		if len(filtered) > 0 {
			client.SendJSON(protocol.NewStockUpdate(filtered))
		}
	}
}
