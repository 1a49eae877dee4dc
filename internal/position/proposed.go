// Package position holds the proposed-trade model and the risk-based
// sizing engine that turns a proposal into a concrete futures order.
package position

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

// ProposedPosition is a trade idea produced by a signal source. It carries
// prices only; quantity is decided later by the sizing engine.
type ProposedPosition struct {
	Symbol          string
	Side            exchange.OrderSide
	EntryPrice      decimal.Decimal
	TakeProfitPrice decimal.Decimal
	StopLossPrice   decimal.Decimal
}

// NewProposedPosition validates and builds a proposal. All three prices
// must be strictly positive.
func NewProposedPosition(symbol string, side exchange.OrderSide, entry, takeProfit, stopLoss decimal.Decimal) (*ProposedPosition, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("symbol must be provided")
	}
	if side != exchange.SideLong && side != exchange.SideShort {
		return nil, fmt.Errorf("side must be LONG or SHORT")
	}
	if entry.Sign() <= 0 {
		return nil, fmt.Errorf("entryPrice must be positive")
	}
	if takeProfit.Sign() <= 0 {
		return nil, fmt.Errorf("takeProfitPrice must be positive")
	}
	if stopLoss.Sign() <= 0 {
		return nil, fmt.Errorf("stopLossPrice must be positive")
	}
	return &ProposedPosition{
		Symbol:          symbol,
		Side:            side,
		EntryPrice:      entry,
		TakeProfitPrice: takeProfit,
		StopLossPrice:   stopLoss,
	}, nil
}

func (p *ProposedPosition) String() string {
	return fmt.Sprintf("%s %s entry=%s tp=%s sl=%s",
		p.Symbol, p.Side, p.EntryPrice, p.TakeProfitPrice, p.StopLossPrice)
}
