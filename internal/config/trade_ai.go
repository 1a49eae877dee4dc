package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/indicators"
)

const (
	tradeAiDir        = "trade-ai"
	defaultConfigName = "default"
)

// TradeAiSettings configures one AI trading profile: the strategy prompt,
// how much candle context the model sees, the confidence floor below
// which proposals are discarded, and any indicator columns to append.
type TradeAiSettings struct {
	Strategy               string              `json:"strategy"`
	CandleLookbackLimit    int                 `json:"candleLookbackLimit"`
	CandleLookbackInterval exchange.Interval   `json:"candleLookbackInterval"`
	IndicatorLookbackLimit int                 `json:"indicatorLookbackLimit"`
	CertaintyThreshold     int                 `json:"certaintyThreshold"`
	Indicators             []indicators.Config `json:"indicators"`
}

// Validate applies the configuration-error checks before any network call
// happens: lookback ordering, threshold bounds and interval spelling.
func (s *TradeAiSettings) Validate() error {
	if strings.TrimSpace(s.Strategy) == "" {
		return fmt.Errorf("strategy text must be provided")
	}
	if s.CandleLookbackLimit <= 0 {
		return fmt.Errorf("candleLookbackLimit must be positive")
	}
	if _, err := exchange.ParseInterval(string(s.CandleLookbackInterval)); err != nil {
		return err
	}
	if s.CertaintyThreshold < 0 || s.CertaintyThreshold > 100 {
		return fmt.Errorf("certaintyThreshold must be between 0 and 100")
	}
	if len(s.Indicators) > 0 && s.IndicatorLookbackLimit < s.CandleLookbackLimit {
		return fmt.Errorf("indicatorLookbackLimit must be >= candleLookbackLimit when indicators are enabled")
	}
	return nil
}

// ResolveConfigName maps a blank selector to the default profile.
func ResolveConfigName(name string) string {
	if strings.TrimSpace(name) == "" {
		return defaultConfigName
	}
	return strings.TrimSpace(name)
}

// LoadTradeAiSettings reads trade-ai/<name>.json. The default profile
// falls back to the built-in settings when no file overrides it.
func LoadTradeAiSettings(name string) (*TradeAiSettings, error) {
	resolved := ResolveConfigName(name)
	path := filepath.Join(tradeAiDir, resolved+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if resolved == defaultConfigName {
				return DefaultTradeAiSettings(), nil
			}
			return nil, fmt.Errorf("AI config not found: %s", resolved)
		}
		return nil, fmt.Errorf("failed to load AI config %s: %w", resolved, err)
	}

	var settings TradeAiSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse AI config %s: %w", resolved, err)
	}
	// Normalize the interval so files can use any accepted spelling.
	interval, err := exchange.ParseInterval(string(settings.CandleLookbackInterval))
	if err == nil {
		settings.CandleLookbackInterval = interval
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("AI config %s: %w", resolved, err)
	}
	return &settings, nil
}

// DefaultTradeAiSettings returns the built-in profile: strict
// price-action rules on 15-minute candles with a 50-candle lookback.
func DefaultTradeAiSettings() *TradeAiSettings {
	return &TradeAiSettings{
		Strategy:               defaultStrategy,
		CandleLookbackLimit:    50,
		CandleLookbackInterval: exchange.Interval15m,
		CertaintyThreshold:     60,
	}
}

const defaultStrategy = `Role
You are an execution-critical trading assistant embedded in an automated trading bot.
You receive a user message containing historic OHLCV candles up to now (latest candle = current).
Decide if there is a clear, strong trade setup based only on price action and volume.
If there is no strong opportunity, return no trade.

Execution rules
Any proposed trade will be executed immediately as a market order.
entryPrice must be the latest candle close unless an explicit last price is provided.

Data interpretation
Candles are ordered oldest to newest unless stated otherwise.
The latest candle represents the current moment.

Strategy (strict, price-action only)
If conditions are not clearly met, return no trade.

LONG setup (all must be true)
- Uptrend: recent highs higher and recent lows higher.
- Pullback: several down candles without breaking the prior swing low.
- Pullback momentum: weakening (smaller bodies or lower volume).
- Confirmation candle now: bullish close, near top of range, ideally exceeds prior high.
- Volume: confirmation candle volume >= pullback candle volume.

SHORT setup (all must be true)
- Downtrend: recent lows lower and recent highs lower.
- Pullback: several up candles without breaking the prior swing high.
- Pullback momentum: weakening (smaller bodies or lower volume).
- Confirmation candle now: bearish close, near bottom of range, ideally breaks prior low.
- Volume: confirmation candle volume >= pullback candle volume.

Risk management (mandatory)
- entryPrice = latest candle close.
- Stop loss:
  - LONG: below the most recent clear swing low.
  - SHORT: above the most recent clear swing high.
  - Must be logically protected, not extremely tight.
- Take profit:
  - Minimum risk-to-reward is 2:1.
  - If 2:1 is not realistic, return no trade.

No-trade conditions (important)
- Choppy or unclear structure.
- Overlapping candles with no direction.
- Latest candle is indecisive (doji-like).
- Volume does not confirm.
- Stop loss would be too close or too far.
- Setup exists but confirmation candle is not formed yet.

Reasoning rules
- Keep reasoning short and decisive (1-2 sentences).
- If no trade: state the main reason.
- If trade: mention trend + confirmation + SL/TP logic.

Certainty rules
- certaintyPercent is how confident you are in the setup, 0-100.
- Below-threshold proposals are discarded by the system, so be honest.

Precision rules
- Prices must be valid decimals.
- LONG: stopLossPrice < entryPrice < takeProfitPrice.
- SHORT: takeProfitPrice < entryPrice < stopLossPrice.

If there is no trade opportunity, set trade.side to NONE.
Output only the structured response expected by the system.`
