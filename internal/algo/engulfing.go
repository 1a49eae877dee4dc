package algo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/position"
)

// EngulfingCandle is the registry key for the engulfing-candle strategy.
const EngulfingCandle = "engulfing-candle"

// An engulfing candle closes opposite to the previous candle with a body
// at least twice its size, read here as a momentum reversal on the last
// two closed one-minute candles.
var (
	engulfingBodyFactor = decimal.NewFromFloat(2.0)
	rewardRiskRatio     = decimal.NewFromFloat(1.1)
)

type EngulfingCandleStrategy struct {
	ex exchange.Exchange
}

func NewEngulfingCandleStrategy(ex exchange.Exchange) *EngulfingCandleStrategy {
	return &EngulfingCandleStrategy{ex: ex}
}

// Run is a pure function of the last two candles; it keeps no state.
func (s *EngulfingCandleStrategy) Run(ctx context.Context, symbol string) (*position.ProposedPosition, error) {
	candles, err := s.ex.GetKlines(ctx, symbol, exchange.CategoryLinear, exchange.Interval1m, 3)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, nil
	}

	exchange.SortCandles(candles)

	prev := candles[len(candles)-2]
	curr := candles[len(candles)-1]

	prevBearish := prev.Close.Cmp(prev.Open) < 0
	prevBullish := !prevBearish
	currBearish := curr.Close.Cmp(curr.Open) < 0
	currBullish := !currBearish

	prevBody := prev.Close.Sub(prev.Open).Abs()
	currBody := curr.Close.Sub(curr.Open).Abs()
	requiredBody := prevBody.Mul(engulfingBodyFactor)

	if currBullish && prevBearish && currBody.Cmp(requiredBody) >= 0 {
		stopLoss := curr.Low
		risk := curr.Close.Sub(stopLoss)
		takeProfit := curr.Close.Add(risk.Mul(rewardRiskRatio))
		return position.NewProposedPosition(symbol, exchange.SideLong, curr.Close, takeProfit, stopLoss)
	}

	if currBearish && prevBullish && currBody.Cmp(requiredBody) >= 0 {
		stopLoss := curr.High
		risk := stopLoss.Sub(curr.Close)
		takeProfit := curr.Close.Sub(risk.Mul(rewardRiskRatio))
		return position.NewProposedPosition(symbol, exchange.SideShort, curr.Close, takeProfit, stopLoss)
	}

	return nil, nil
}
