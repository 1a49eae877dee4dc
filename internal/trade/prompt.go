package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomislav-safran/vibe-trader/internal/config"
	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/indicators"
)

func buildSystemMessage(settings *config.TradeAiSettings) string {
	return "Strategy:\n" + settings.Strategy
}

// buildUserMessage renders the market context the advisor sees: a CSV
// candle listing, oldest first, with one extra column per configured
// indicator. When indicators are enabled the fetch covers the indicator
// lookback so warm-up happens outside the printed window, but only the
// last candleLookbackLimit rows are shown.
func (e *AiExecutor) buildUserMessage(ctx context.Context, symbol string, settings *config.TradeAiSettings) (string, error) {
	limit, err := resolveLookbackLimit(settings)
	if err != nil {
		return "", err
	}

	candles, err := e.ex.GetKlines(ctx, symbol, exchange.CategoryLinear, settings.CandleLookbackInterval, limit)
	if err != nil {
		return "", fmt.Errorf("fetching candles for %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return "", fmt.Errorf("no candles returned for %s", symbol)
	}

	exchange.SortCandles(candles)

	startIndex := 0
	if len(candles) > settings.CandleLookbackLimit {
		startIndex = len(candles) - settings.CandleLookbackLimit
	}
	contextCandles := candles[startIndex:]

	series, err := indicators.ComputeSeries(candles, settings.Indicators)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", symbol)
	fmt.Fprintf(&b, "Interval: %s\n", settings.CandleLookbackInterval)
	b.WriteString("Candles (startTime,open,high,low,close,volume")
	for _, s := range series {
		b.WriteByte(',')
		b.WriteString(s.Name)
	}
	b.WriteString("):\n")

	for i, c := range contextCandles {
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s,%s", c.StartTime, c.Open, c.High, c.Low, c.Close, c.Volume)
		for _, s := range series {
			b.WriteByte(',')
			b.WriteString(s.Values[startIndex+i])
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// resolveLookbackLimit returns how many candles to fetch. With indicators
// enabled the indicator lookback governs, and it must cover at least the
// candle lookback (a configuration error otherwise).
func resolveLookbackLimit(settings *config.TradeAiSettings) (int, error) {
	if len(settings.Indicators) == 0 {
		return settings.CandleLookbackLimit, nil
	}
	if settings.IndicatorLookbackLimit < settings.CandleLookbackLimit {
		return 0, fmt.Errorf("indicatorLookbackLimit must be >= candleLookbackLimit when indicators are enabled")
	}
	return settings.IndicatorLookbackLimit, nil
}
