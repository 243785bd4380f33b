package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gorilla/websocket" // Using Gorilla for the test CLIENT
	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/gateway"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/hub"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/orders"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/quotes"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/repository"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/ticker"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := quotes.NewStore(rand.New(rand.NewSource(42)), ticker.RealClock{})
	wsHub := hub.NewHub(store, zap.NewNop())
	ledger, err := orders.NewLedger(context.Background(), repository.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}
	orderSvc := orders.NewService(store, ledger, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		client := gateway.NewClient(conn, wsHub, orderSvc, zap.NewNop())
		wsHub.Register(client)
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

func connectWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http")
	wsConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to websocket: %v", err)
	}
	t.Cleanup(func() { wsConn.Close() })
	return wsConn
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("Bad envelope %s: %v", msg, err)
	}
	return env
}

func TestEndToEnd_SubscribeAndOrder(t *testing.T) {
	server := startServer(t)
	wsConn := connectWS(t, server.URL)

	// Lowercase and padded symbols are normalized server-side. Both are new,
	// so the baseline quotes arrive immediately instead of on the next tick.
	subMsg := `{"event": "subscribeToSymbols", "data": [" pso ", "ppl"]}`
	wsConn.WriteMessage(websocket.TextMessage, []byte(subMsg))

	env := readEnvelope(t, wsConn)
	if env.Event != "stockUpdate" {
		t.Fatalf("Expected stockUpdate, got %s", env.Event)
	}
	var update []struct {
		Symbol string  `json:"symbol"`
		Buy    float64 `json:"buy"`
	}
	if err := json.Unmarshal(env.Data, &update); err != nil {
		t.Fatal(err)
	}
	if len(update) != 2 || update[0].Symbol != "PSO" || update[1].Symbol != "PPL" {
		t.Fatalf("Unexpected initial update: %s", env.Data)
	}

	// Order at the current buy price is always inside the band.
	buy := update[0].Buy
	orderMsg := fmt.Sprintf(
		`{"event": "placeOrder", "data": {"symbol": "PSO", "volume": 10, "rate": %.2f, "type": "buy", "account": 7}}`,
		buy)
	wsConn.WriteMessage(websocket.TextMessage, []byte(orderMsg))

	env = readEnvelope(t, wsConn)
	if env.Event != "orderConfirmation" {
		t.Fatalf("Expected orderConfirmation, got %s: %s", env.Event, env.Data)
	}
	var conf struct {
		Message string `json:"message"`
		Order   struct {
			ID     int64  `json:"id"`
			Symbol string `json:"symbol"`
			Ticket string `json:"ticket"`
			Action string `json:"action"`
		} `json:"order"`
	}
	if err := json.Unmarshal(env.Data, &conf); err != nil {
		t.Fatal(err)
	}
	if conf.Order.ID != 1 {
		t.Errorf("First order id = %d, want 1", conf.Order.ID)
	}
	if conf.Order.Ticket != "1536" || conf.Order.Action != "Filled" {
		t.Errorf("Unexpected order record: %+v", conf.Order)
	}
	if !strings.Contains(conf.Message, "Order placed") {
		t.Errorf("Unexpected confirmation message: %q", conf.Message)
	}

	// Second accepted order takes the next id.
	wsConn.WriteMessage(websocket.TextMessage, []byte(orderMsg))
	env = readEnvelope(t, wsConn)
	if env.Event != "orderConfirmation" {
		t.Fatalf("Expected orderConfirmation, got %s: %s", env.Event, env.Data)
	}
	if err := json.Unmarshal(env.Data, &conf); err != nil {
		t.Fatal(err)
	}
	if conf.Order.ID != 2 {
		t.Errorf("Second order id = %d, want 2", conf.Order.ID)
	}
}

func TestEndToEnd_OrderRejections(t *testing.T) {
	server := startServer(t)
	wsConn := connectWS(t, server.URL)

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"event": "subscribeToSymbols", "data": ["pso"]}`))
	env := readEnvelope(t, wsConn)
	var update []struct {
		Buy float64 `json:"buy"`
	}
	if err := json.Unmarshal(env.Data, &update); err != nil || len(update) != 1 {
		t.Fatalf("Bad initial update: %s", env.Data)
	}

	// Double the market price is far outside the 10% band.
	outOfBand := fmt.Sprintf(
		`{"event": "placeOrder", "data": {"symbol": "PSO", "volume": 10, "rate": %.2f, "type": "buy", "account": 7}}`,
		update[0].Buy*2)
	wsConn.WriteMessage(websocket.TextMessage, []byte(outOfBand))

	env = readEnvelope(t, wsConn)
	if env.Event != "orderError" {
		t.Fatalf("Expected orderError, got %s: %s", env.Event, env.Data)
	}
	var errBody struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &errBody); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errBody.Message, "outside allowed range") {
		t.Errorf("Unexpected band error message: %q", errBody.Message)
	}

	// Malformed order payloads come back as the generic intake error.
	wsConn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event": "placeOrder", "data": {"symbol": "PSO", "volume": 0, "rate": 100, "type": "buy", "account": 7}}`))
	env = readEnvelope(t, wsConn)
	if env.Event != "orderError" {
		t.Fatalf("Expected orderError, got %s: %s", env.Event, env.Data)
	}
	if err := json.Unmarshal(env.Data, &errBody); err != nil {
		t.Fatal(err)
	}
	if errBody.Message != "Invalid order data" {
		t.Errorf("Message = %q, want %q", errBody.Message, "Invalid order data")
	}
}

func TestEndToEnd_InvalidJSON(t *testing.T) {
	server := startServer(t)
	wsConn := connectWS(t, server.URL)

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{ "event": "subsc`))

	env := readEnvelope(t, wsConn)
	if env.Event != "orderError" {
		t.Fatalf("Expected orderError, got %s", env.Event)
	}
	if !strings.Contains(string(env.Data), "Invalid JSON") {
		t.Errorf("Expected Invalid JSON message, got: %s", env.Data)
	}
}

func TestEndToEnd_UnknownEvent(t *testing.T) {
	server := startServer(t)
	wsConn := connectWS(t, server.URL)

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"event": "shutdown", "data": null}`))

	env := readEnvelope(t, wsConn)
	if env.Event != "orderError" {
		t.Fatalf("Expected orderError, got %s", env.Event)
	}
	if !strings.Contains(string(env.Data), "Unknown event") {
		t.Errorf("Expected unknown event message, got: %s", env.Data)
	}
}

func TestEndToEnd_MaxMessageSize(t *testing.T) {
	server := startServer(t)
	wsConn := connectWS(t, server.URL)

	hugePayload := strings.Repeat("a", 513*1024)
	hugeMsg := fmt.Sprintf(`{"event":"subscribeToSymbols", "data": ["%s"]}`, hugePayload)

	err := wsConn.WriteMessage(websocket.TextMessage, []byte(hugeMsg))
	// Depending on timing, write might succeed, but Read should fail (Disconnect)
	if err == nil {
		wsConn.SetReadDeadline(time.Now().Add(1 * time.Second))
		_, _, err := wsConn.ReadMessage()
		if err == nil {
			t.Error("Server should have closed connection for huge message, but it stayed open")
		}
	}
}
