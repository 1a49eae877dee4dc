package exchange

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the product category of an instrument (Bybit terminology).
type Category string

const (
	CategorySpot    Category = "spot"
	CategoryLinear  Category = "linear"
	CategoryInverse Category = "inverse"
	CategoryOption  Category = "option"
)

// OrderSide is the direction of a futures position.
type OrderSide string

const (
	SideLong  OrderSide = "LONG"
	SideShort OrderSide = "SHORT"
)

// AccountType selects which wallet a balance query reads.
type AccountType string

const (
	AccountUnified  AccountType = "UNIFIED"
	AccountContract AccountType = "CONTRACT"
	AccountSpot     AccountType = "SPOT"
	AccountFund     AccountType = "FUND"
)

// Interval is a candle period.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// Candle is a single OHLCV entry. Ordering by StartTime is NOT guaranteed
// by the exchange; consumers must sort before relying on it.
type Candle struct {
	StartTime int64           `json:"start_time"` // epoch millis
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	Turnover  decimal.Decimal `json:"turnover"`
}

// SortCandles orders candles by start time ascending, oldest first.
func SortCandles(candles []Candle) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].StartTime < candles[j].StartTime
	})
}

// InstrumentPrecision holds the minimum increments an instrument accepts.
type InstrumentPrecision struct {
	BasePrecision decimal.Decimal // quantity step
	TickSize      decimal.Decimal // price step
}

func (p InstrumentPrecision) Validate() error {
	if p.BasePrecision.Sign() <= 0 {
		return fmt.Errorf("basePrecision must be positive")
	}
	if p.TickSize.Sign() <= 0 {
		return fmt.Errorf("tickSize must be positive")
	}
	return nil
}

// FuturesMarketOrderRequest is the fully-sized order the position engine
// emits and the exchange consumes. TakeProfit/StopLoss are optional; a
// zero value means not set.
type FuturesMarketOrderRequest struct {
	Symbol     string
	Category   Category
	Side       OrderSide
	Quantity   decimal.Decimal
	TakeProfit decimal.Decimal
	StopLoss   decimal.Decimal
}

func (r FuturesMarketOrderRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("symbol must be provided")
	}
	if r.Side != SideLong && r.Side != SideShort {
		return fmt.Errorf("side must be LONG or SHORT")
	}
	if r.Quantity.Sign() <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if !r.TakeProfit.IsZero() && r.TakeProfit.Sign() <= 0 {
		return fmt.Errorf("takeProfit must be positive when provided")
	}
	if !r.StopLoss.IsZero() && r.StopLoss.Sign() <= 0 {
		return fmt.Errorf("stopLoss must be positive when provided")
	}
	return nil
}

// ParseCategory accepts the lowercase category names used on the command line.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "spot":
		return CategorySpot, nil
	case "linear":
		return CategoryLinear, nil
	case "inverse":
		return CategoryInverse, nil
	case "option":
		return CategoryOption, nil
	default:
		return "", fmt.Errorf("unsupported category: %s", value)
	}
}

// ParseOrderSide accepts both position terms (long/short) and order terms (buy/sell).
func ParseOrderSide(value string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "long", "buy":
		return SideLong, nil
	case "short", "sell":
		return SideShort, nil
	default:
		return "", fmt.Errorf("unsupported side: %s", value)
	}
}

// ParseInterval accepts the common spellings of a candle period ("15", "15m", "15min"...).
func ParseInterval(value string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "1m", "1min", "1minute":
		return Interval1m, nil
	case "3", "3m", "3min":
		return Interval3m, nil
	case "5", "5m", "5min":
		return Interval5m, nil
	case "15", "15m", "15min":
		return Interval15m, nil
	case "30", "30m", "30min":
		return Interval30m, nil
	case "60", "60m", "1h", "1hour":
		return Interval1h, nil
	case "120", "2h":
		return Interval2h, nil
	case "240", "4h":
		return Interval4h, nil
	case "360", "6h":
		return Interval6h, nil
	case "720", "12h":
		return Interval12h, nil
	case "d", "1d", "day":
		return Interval1d, nil
	case "w", "1w", "week":
		return Interval1w, nil
	case "mo", "1mo", "month":
		return Interval1M, nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", value)
	}
}
