package bybit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

func newTestClient(url string) *Client {
	return &Client{
		baseURL:   url,
		apiKey:    "test-key",
		apiSecret: "test-secret",
		hc:        &http.Client{Timeout: 5 * time.Second},
	}
}

func ok(result string) string {
	return `{"retCode":0,"retMsg":"OK","result":` + result + `}`
}

func TestGetKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/kline" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "15" {
			t.Errorf("interval = %q, want the venue code 15", q.Get("interval"))
		}
		if q.Get("category") != "linear" || q.Get("symbol") != "BTCUSDT" || q.Get("limit") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		// Bybit returns newest first.
		io.WriteString(w, ok(`{"list":[
			["1700000060000","101","102","100","101.5","12","1218"],
			["1700000000000","100","101","99","101","10","1000"]
		]}`))
	}))
	defer srv.Close()

	candles, err := newTestClient(srv.URL).GetKlines(context.Background(), "BTCUSDT", exchange.CategoryLinear, exchange.Interval15m, 2)
	if err != nil {
		t.Fatalf("GetKlines failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[0].StartTime != 1700000060000 {
		t.Errorf("StartTime = %d", candles[0].StartTime)
	}
	if !candles[0].Close.Equal(decimal.RequireFromString("101.5")) {
		t.Errorf("Close = %s, want 101.5", candles[0].Close)
	}
}

func TestGetKlinesRejectsMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ok(`{"list":[["1700000000000","100","101"]]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetKlines(context.Background(), "BTCUSDT", exchange.CategoryLinear, exchange.Interval1m, 1); err == nil {
		t.Fatal("expected error for short kline row")
	}
}

func TestGetInstrumentPrecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ok(`{"list":[{
			"symbol":"BTCUSDT",
			"lotSizeFilter":{"qtyStep":"0.001"},
			"priceFilter":{"tickSize":"0.5"}
		}]}`))
	}))
	defer srv.Close()

	precision, err := newTestClient(srv.URL).GetInstrumentPrecision(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetInstrumentPrecision failed: %v", err)
	}
	if precision == nil {
		t.Fatal("expected precision for a known symbol")
	}
	if !precision.BasePrecision.Equal(decimal.RequireFromString("0.001")) || !precision.TickSize.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("precision = %+v", precision)
	}
}

func TestGetInstrumentPrecisionUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ok(`{"list":[]}`))
	}))
	defer srv.Close()

	precision, err := newTestClient(srv.URL).GetInstrumentPrecision(context.Background(), "NOPEUSDT")
	if err != nil {
		t.Fatalf("GetInstrumentPrecision failed: %v", err)
	}
	if precision != nil {
		t.Errorf("expected nil precision for unknown symbol, got %+v", precision)
	}
}

func TestGetWalletBalanceSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts := r.Header.Get("X-BAPI-TIMESTAMP")
		if r.Header.Get("X-BAPI-API-KEY") != "test-key" || ts == "" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		mac := hmac.New(sha256.New, []byte("test-secret"))
		mac.Write([]byte(ts + "test-key" + "5000" + r.URL.RawQuery))
		if want := hex.EncodeToString(mac.Sum(nil)); r.Header.Get("X-BAPI-SIGN") != want {
			t.Errorf("signature mismatch: got %s want %s", r.Header.Get("X-BAPI-SIGN"), want)
		}
		io.WriteString(w, ok(`{"list":[{"totalAvailableBalance":"12345.67"}]}`))
	}))
	defer srv.Close()

	balance, err := newTestClient(srv.URL).GetWalletBalance(context.Background(), exchange.AccountUnified)
	if err != nil {
		t.Fatalf("GetWalletBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("12345.67")) {
		t.Errorf("balance = %s, want 12345.67", balance)
	}
}

func TestHasOpenOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, ok(`{"list":[{"orderId":"abc"}]}`))
	}))
	defer srv.Close()

	open, err := newTestClient(srv.URL).HasOpenOrders(context.Background(), "BTCUSDT", exchange.CategoryLinear)
	if err != nil {
		t.Fatalf("HasOpenOrders failed: %v", err)
	}
	if !open {
		t.Error("expected open orders to be reported")
	}
}

func TestPlaceFuturesMarketOrder(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/order/create" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		ts := r.Header.Get("X-BAPI-TIMESTAMP")
		mac := hmac.New(sha256.New, []byte("test-secret"))
		mac.Write([]byte(ts + "test-key" + "5000" + string(body)))
		if want := hex.EncodeToString(mac.Sum(nil)); r.Header.Get("X-BAPI-SIGN") != want {
			t.Error("body signature mismatch")
		}
		io.WriteString(w, ok(`{"orderId":"order-42"}`))
	}))
	defer srv.Close()

	req := exchange.FuturesMarketOrderRequest{
		Symbol:     "BTCUSDT",
		Category:   exchange.CategoryLinear,
		Side:       exchange.SideShort,
		Quantity:   decimal.RequireFromString("0.5"),
		TakeProfit: decimal.RequireFromString("95"),
		StopLoss:   decimal.RequireFromString("105"),
	}
	orderID, err := newTestClient(srv.URL).PlaceFuturesMarketOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("PlaceFuturesMarketOrder failed: %v", err)
	}
	if orderID != "order-42" {
		t.Errorf("orderID = %q, want order-42", orderID)
	}

	if captured["side"] != "Sell" || captured["orderType"] != "Market" || captured["qty"] != "0.5" {
		t.Errorf("unexpected order body: %v", captured)
	}
	if captured["takeProfit"] != "95" || captured["stopLoss"] != "105" {
		t.Errorf("tp/sl not forwarded: %v", captured)
	}
	if captured["orderLinkId"] == "" {
		t.Error("orderLinkId must be set for idempotent submission")
	}
}

func TestRetCodeErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"retCode":10001,"retMsg":"params error","result":{}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetKlines(context.Background(), "BTCUSDT", exchange.CategoryLinear, exchange.Interval1m, 1)
	if err == nil {
		t.Fatal("expected retCode error")
	}
}

func TestHTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetWalletBalance(context.Background(), exchange.AccountUnified)
	if err == nil {
		t.Fatal("expected http status error")
	}
}

func TestMapInterval(t *testing.T) {
	tests := []struct {
		in   exchange.Interval
		want string
	}{
		{exchange.Interval1m, "1"},
		{exchange.Interval1h, "60"},
		{exchange.Interval1d, "D"},
		{exchange.Interval1w, "W"},
		{exchange.Interval1M, "M"},
	}
	for _, tc := range tests {
		if got := mapInterval(tc.in); got != tc.want {
			t.Errorf("mapInterval(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
