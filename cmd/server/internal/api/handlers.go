package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/protocol"
	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

// QuoteSource is the slice of the quote store the REST surface needs.
type QuoteSource interface {
	GetOrCreate(symbol string) (models.Quote, bool)
}

// OrderReader serves the historical query surface.
type OrderReader interface {
	ByAccount(ctx context.Context, account int64) ([]models.Order, error)
	Last(ctx context.Context, account int64, symbol string) (*models.Order, error)
}

// Handler exposes the stateless historical-query endpoints.
type Handler struct {
	quotes QuoteSource
	orders OrderReader
	logger *zap.Logger
}

func NewHandler(quotes QuoteSource, orders OrderReader, logger *zap.Logger) *Handler {
	return &Handler{quotes: quotes, orders: orders, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/trade-history", h.tradeHistory)
	mux.HandleFunc("POST /api/last-trade", h.lastTrade)
	mux.HandleFunc("POST /api/stock-data", h.stockData)
}

// GET /api/trade-history?id=<account>
func (h *Handler) tradeHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Account ID is required"})
		return
	}

	orders, err := h.orders.ByAccount(r.Context(), id)
	if err != nil {
		h.logger.Error("Trade history query failed", zap.Int64("account", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Server error"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type lastTradeRequest struct {
	Account protocol.Number `json:"account"`
	Symbol  string          `json:"symbol"`
}

type lastTradeResponse struct {
	LastTrade *float64 `json:"lastTrade"`
}

// POST /api/last-trade {"account": 7, "symbol": "PSO"}
// Responds with the most recent rate, or a null sentinel when the account
// has no trades in that symbol.
func (h *Handler) lastTrade(w http.ResponseWriter, r *http.Request) {
	var req lastTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account <= 0 || strings.TrimSpace(req.Symbol) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Account and symbol are required"})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	last, err := h.orders.Last(r.Context(), int64(req.Account), symbol)
	if err != nil {
		h.logger.Error("Last trade query failed",
			zap.Int64("account", int64(req.Account)), zap.String("symbol", symbol), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Server error"})
		return
	}

	var resp lastTradeResponse
	if last != nil {
		resp.LastTrade = &last.Rate
	}
	writeJSON(w, http.StatusOK, resp)
}

type stockDataRequest struct {
	Symbols []string `json:"symbols"`
}

// POST /api/stock-data {"symbols": ["pso", "ppl"]}
// Fetch-or-create: unknown symbols are created with a fresh baseline.
func (h *Handler) stockData(w http.ResponseWriter, r *http.Request) {
	var req stockDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbols == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid symbols format"})
		return
	}

	data := make([]models.Quote, 0, len(req.Symbols))
	for _, raw := range req.Symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}
		q, _ := h.quotes.GetOrCreate(sym)
		data = append(data, q)
	}
	writeJSON(w, http.StatusOK, data)
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
