// Package bybit implements the exchange port against the Bybit v5 REST API.
//
// Market data endpoints (klines, instrument info) are public; wallet,
// open-order and order-create endpoints are signed with the v5 HMAC scheme
// (timestamp + api key + recv window + query-or-body).
package bybit

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

const (
	defaultBaseURL = "https://api.bybit.com"
	recvWindow     = "5000"
)

// Client is the Bybit implementation of exchange.Exchange.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	hc        *http.Client
}

// NewClient builds a client from the environment. BYBIT_BASE_URL may point
// at the demo-trading domain; market data works without credentials.
func NewClient() *Client {
	base := os.Getenv("BYBIT_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:   base,
		apiKey:    os.Getenv("BYBIT_API_KEY"),
		apiSecret: os.Getenv("BYBIT_API_SECRET"),
		hc:        &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the common Bybit v5 response wrapper.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) GetKlines(ctx context.Context, symbol string, category exchange.Category, interval exchange.Interval, limit int) ([]exchange.Candle, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1")
	}
	q := url.Values{}
	q.Set("category", string(category))
	q.Set("symbol", symbol)
	q.Set("interval", mapInterval(interval))
	q.Set("limit", strconv.Itoa(limit))

	var result struct {
		List [][]string `json:"list"`
	}
	if err := c.get(ctx, "/v5/market/kline", q, false, &result); err != nil {
		return nil, err
	}

	candles := make([]exchange.Candle, 0, len(result.List))
	for _, row := range result.List {
		// startTime, open, high, low, close, volume, turnover
		if len(row) < 7 {
			return nil, fmt.Errorf("malformed kline row: %v", row)
		}
		start, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed kline start time %q: %w", row[0], err)
		}
		fields := make([]decimal.Decimal, 6)
		for i := 0; i < 6; i++ {
			d, err := decimal.NewFromString(row[i+1])
			if err != nil {
				return nil, fmt.Errorf("malformed kline value %q: %w", row[i+1], err)
			}
			fields[i] = d
		}
		candles = append(candles, exchange.Candle{
			StartTime: start,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
			Turnover:  fields[5],
		})
	}
	return candles, nil
}

func (c *Client) GetInstrumentPrecision(ctx context.Context, symbol string) (*exchange.InstrumentPrecision, error) {
	q := url.Values{}
	q.Set("category", string(exchange.CategoryLinear))
	q.Set("symbol", symbol)

	var result struct {
		List []struct {
			Symbol        string `json:"symbol"`
			LotSizeFilter struct {
				QtyStep       string `json:"qtyStep"`
				BasePrecision string `json:"basePrecision"`
			} `json:"lotSizeFilter"`
			PriceFilter struct {
				TickSize string `json:"tickSize"`
			} `json:"priceFilter"`
		} `json:"list"`
	}
	if err := c.get(ctx, "/v5/market/instruments-info", q, false, &result); err != nil {
		return nil, err
	}

	for _, entry := range result.List {
		if entry.Symbol != symbol {
			continue
		}
		// Linear contracts report qtyStep; spot reports basePrecision.
		stepStr := entry.LotSizeFilter.QtyStep
		if stepStr == "" {
			stepStr = entry.LotSizeFilter.BasePrecision
		}
		step, err := decimal.NewFromString(stepStr)
		if err != nil {
			return nil, fmt.Errorf("malformed qty step %q: %w", stepStr, err)
		}
		tick, err := decimal.NewFromString(entry.PriceFilter.TickSize)
		if err != nil {
			return nil, fmt.Errorf("malformed tick size %q: %w", entry.PriceFilter.TickSize, err)
		}
		precision := &exchange.InstrumentPrecision{BasePrecision: step, TickSize: tick}
		if err := precision.Validate(); err != nil {
			return nil, fmt.Errorf("instrument precision for %s: %w", symbol, err)
		}
		return precision, nil
	}
	return nil, nil
}

func (c *Client) GetWalletBalance(ctx context.Context, accountType exchange.AccountType) (decimal.Decimal, error) {
	if accountType == "" {
		accountType = exchange.AccountUnified
	}
	q := url.Values{}
	q.Set("accountType", string(accountType))

	var result struct {
		List []struct {
			TotalAvailableBalance string `json:"totalAvailableBalance"`
		} `json:"list"`
	}
	if err := c.get(ctx, "/v5/account/wallet-balance", q, true, &result); err != nil {
		return decimal.Zero, err
	}
	if len(result.List) == 0 || result.List[0].TotalAvailableBalance == "" {
		return decimal.Zero, nil
	}
	balance, err := decimal.NewFromString(result.List[0].TotalAvailableBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed balance %q: %w", result.List[0].TotalAvailableBalance, err)
	}
	return balance, nil
}

func (c *Client) HasOpenOrders(ctx context.Context, symbol string, category exchange.Category) (bool, error) {
	q := url.Values{}
	q.Set("category", string(category))
	q.Set("symbol", symbol)

	var result struct {
		List []json.RawMessage `json:"list"`
	}
	if err := c.get(ctx, "/v5/order/realtime", q, true, &result); err != nil {
		return false, err
	}
	return len(result.List) > 0, nil
}

func (c *Client) PlaceFuturesMarketOrder(ctx context.Context, req exchange.FuturesMarketOrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	body := map[string]string{
		"category":    string(req.Category),
		"symbol":      req.Symbol,
		"side":        mapSide(req.Side),
		"orderType":   "Market",
		"qty":         req.Quantity.String(),
		"tpslMode":    "Full",
		"orderLinkId": uuid.NewString(), // dedupe-safe id for retried submissions
	}
	if !req.TakeProfit.IsZero() {
		body["takeProfit"] = req.TakeProfit.String()
	}
	if !req.StopLoss.IsZero() {
		body["stopLoss"] = req.StopLoss.String()
	}

	var result struct {
		OrderID string `json:"orderId"`
	}
	if err := c.post(ctx, "/v5/order/create", body, &result); err != nil {
		return "", err
	}
	return result.OrderID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, signed bool, out interface{}) error {
	u := c.baseURL + path
	encoded := query.Encode()
	if encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if signed {
		c.sign(req, encoded)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, string(body))
	return c.do(req, out)
}

// sign applies the v5 HMAC headers. The signed payload is the query string
// for GETs and the raw JSON body for POSTs.
func (c *Client) sign(req *http.Request, payload string) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts + c.apiKey + recvWindow + payload))

	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", ts)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bybit http %d: %s", resp.StatusCode, string(b))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding bybit response: %w", err)
	}
	if env.RetCode != 0 {
		return fmt.Errorf("bybit error %d: %s", env.RetCode, env.RetMsg)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decoding bybit result: %w", err)
		}
	}
	return nil
}

func mapSide(side exchange.OrderSide) string {
	if side == exchange.SideShort {
		return "Sell"
	}
	return "Buy"
}

func mapInterval(interval exchange.Interval) string {
	switch interval {
	case exchange.Interval1m:
		return "1"
	case exchange.Interval3m:
		return "3"
	case exchange.Interval5m:
		return "5"
	case exchange.Interval15m:
		return "15"
	case exchange.Interval30m:
		return "30"
	case exchange.Interval1h:
		return "60"
	case exchange.Interval2h:
		return "120"
	case exchange.Interval4h:
		return "240"
	case exchange.Interval6h:
		return "360"
	case exchange.Interval12h:
		return "720"
	case exchange.Interval1d:
		return "D"
	case exchange.Interval1w:
		return "W"
	case exchange.Interval1M:
		return "M"
	default:
		return string(interval)
	}
}
