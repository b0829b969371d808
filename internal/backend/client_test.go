package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vanta-trade/internal/config"
	"vanta-trade/internal/order"
	"vanta-trade/internal/session"
)

// fakeSessions 模拟持久化会话读取，记录读取次数以验证"每次调用都取新值"。
type fakeSessions struct {
	userID string
	err    error
	reads  int
}

func (f *fakeSessions) PersistedUserID(context.Context) (string, error) {
	f.reads++
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func newTestClient(t *testing.T, baseURL string, sessions SessionSource) *Client {
	t.Helper()
	client, err := NewClient(config.BackendConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, sessions, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func makePayload() order.Payload {
	return order.Payload{
		UserID:          "user-1",
		OrderType:       order.WireMarket,
		Side:            "long",
		MarketAddress:   "0xmarket",
		MarketSymbol:    "ETH/USD",
		SizeDeltaUSD:    "100.00",
		AcceptablePrice: "3000.00",
		Leverage:        2.5,
		IsLong:          true,
		ChainID:         42161,
	}
}

func TestSubmitOrderSuccess(t *testing.T) {
	var gotHeader string
	var gotBody order.Payload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotHeader = r.Header.Get("X-User-Id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(TradeResponse{Success: true, OrderID: "abc123"})
	}))
	defer srv.Close()

	sessions := &fakeSessions{userID: "user-1"}
	client := newTestClient(t, srv.URL, sessions)

	resp, err := client.SubmitOrder(context.Background(), makePayload())
	if err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}
	if resp.OrderID != "abc123" {
		t.Errorf("orderId = %q, want abc123", resp.OrderID)
	}
	if gotHeader != "user-1" {
		t.Errorf("X-User-Id = %q, want user-1", gotHeader)
	}
	if gotBody.MarketSymbol != "ETH/USD" {
		t.Errorf("request body not forwarded: %+v", gotBody)
	}
	if sessions.reads != 1 {
		t.Errorf("expected one persisted read per call, got %d", sessions.reads)
	}
}

func TestSubmitOrderBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TradeResponse{Success: false, Error: "insufficient liquidity"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{userID: "user-1"})

	_, err := client.SubmitOrder(context.Background(), makePayload())
	if !IsBackend(err) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if err.Error() != "insufficient liquidity" {
		t.Errorf("message = %q, want backend text verbatim", err.Error())
	}
}

func TestSubmitOrderStructuredHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "leverage out of bounds"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{userID: "user-1"})

	_, err := client.SubmitOrder(context.Background(), makePayload())
	if !IsBackend(err) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if err.Error() != "leverage out of bounds" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestSubmitOrderUnparseableHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{userID: "user-1"})

	_, err := client.SubmitOrder(context.Background(), makePayload())
	if !IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestSubmitOrderUnreachableBackend(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", &fakeSessions{userID: "user-1"})

	_, err := client.SubmitOrder(context.Background(), makePayload())
	if !IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestRequestsReadSessionFresh(t *testing.T) {
	headers := make([]string, 0, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("X-User-Id"))
		_ = json.NewEncoder(w).Encode(TradeResponse{Success: true, OrderID: "x"})
	}))
	defer srv.Close()

	sessions := &fakeSessions{userID: "first"}
	client := newTestClient(t, srv.URL, sessions)

	if _, err := client.SubmitOrder(context.Background(), makePayload()); err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}

	// 构造与派发之间发生了登出/重新登录。
	sessions.userID = "second"
	if _, err := client.SubmitOrder(context.Background(), makePayload()); err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}

	if len(headers) != 2 || headers[0] != "first" || headers[1] != "second" {
		t.Errorf("auth header not read fresh per call: %v", headers)
	}
}

func TestAnonymousRequestWhenNotAuthenticated(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-User-Id")
		_ = json.NewEncoder(w).Encode([]order.Payload{})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{err: session.ErrNotAuthenticated})

	if _, err := client.GetOrders(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOrders returned error: %v", err)
	}
	if gotHeader != "" {
		t.Errorf("expected no auth header, got %q", gotHeader)
	}
}

func TestCancelOrderPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(TradeResponse{Success: true})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{userID: "user-1"})

	if _, err := client.CancelOrder(context.Background(), "abc123"); err != nil {
		t.Fatalf("CancelOrder returned error: %v", err)
	}
	if gotPath != "/orders/abc123/cancel" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestGetOrdersQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]order.Payload{makePayload()})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSessions{userID: "user-1"})

	orders, err := client.GetOrders(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrders returned error: %v", err)
	}
	if len(orders) != 1 || orders[0].MarketSymbol != "ETH/USD" {
		t.Errorf("unexpected orders: %+v", orders)
	}
	if gotQuery != "userId=user-1" {
		t.Errorf("query = %q", gotQuery)
	}
}
