// Package indicators computes technical-indicator series aligned to candle
// indices. Values are rendered as decimal strings, with the literal "NA"
// for indices inside an indicator's warm-up period, so the series can be
// appended column-wise to a candle listing.
package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

// Type names an indicator family.
type Type string

const (
	TypeEMA Type = "EMA"
	TypeSMA Type = "SMA"
	TypeRSI Type = "RSI"
)

// Config selects one indicator to compute.
type Config struct {
	Type   Type `json:"type"`
	Period int  `json:"period"`
}

// Series is a named value column aligned 1:1 with the input candles.
type Series struct {
	Name   string
	Values []string
}

// ComputeSeries evaluates every configured indicator over the candles.
// Candles must already be sorted oldest first.
func ComputeSeries(candles []exchange.Candle, configs []Config) ([]Series, error) {
	if len(configs) == 0 {
		return nil, nil
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("candles are required for indicator calculation")
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close.InexactFloat64()
	}
	scale := maxCloseScale(candles)

	results := make([]Series, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Period <= 0 {
			return nil, fmt.Errorf("%s requires a positive period", cfg.Type)
		}
		if cfg.Period > len(candles) {
			return nil, fmt.Errorf("%s(%d) needs at least %d candles, got %d", cfg.Type, cfg.Period, cfg.Period, len(candles))
		}
		switch cfg.Type {
		case TypeEMA:
			results = append(results, toSeries("EMA", cfg.Period, talib.Ema(closes, cfg.Period), cfg.Period-1, scale))
		case TypeSMA:
			results = append(results, toSeries("SMA", cfg.Period, talib.Sma(closes, cfg.Period), cfg.Period-1, scale))
		case TypeRSI:
			// RSI needs one extra candle for the first price change.
			results = append(results, toSeries("RSI", cfg.Period, talib.Rsi(closes, cfg.Period), cfg.Period, scale))
		default:
			return nil, fmt.Errorf("unsupported indicator: %s", cfg.Type)
		}
	}
	return results, nil
}

// toSeries formats raw indicator output, padding the warm-up prefix with
// "NA" and rounding values to the candle price scale.
func toSeries(name string, period int, values []float64, warmup int, scale int32) Series {
	out := make([]string, len(values))
	for i, v := range values {
		if i < warmup {
			out[i] = "NA"
			continue
		}
		out[i] = decimal.NewFromFloat(v).StringFixed(scale)
	}
	return Series{Name: fmt.Sprintf("%s(%d)", name, period), Values: out}
}

// maxCloseScale finds the widest decimal scale among the close prices, so
// indicator output matches the instrument's displayed precision.
func maxCloseScale(candles []exchange.Candle) int32 {
	var scale int32
	for _, c := range candles {
		if s := -c.Close.Exponent(); s > scale {
			scale = s
		}
	}
	return scale
}
