package trade

import (
	"context"
	"fmt"
	"log"

	"github.com/tomislav-safran/vibe-trader/internal/algo"
	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/position"
)

// AlgoExecutor runs the rule-strategy decision pipeline. It mirrors the
// AI pipeline minus the confidence gate: rule strategies either see a
// setup or they don't.
type AlgoExecutor struct {
	ex         exchange.Exchange
	strategies *algo.Registry
	sizer      *position.Sizer
}

func NewAlgoExecutor(ex exchange.Exchange, strategies *algo.Registry, sizer *position.Sizer) *AlgoExecutor {
	return &AlgoExecutor{ex: ex, strategies: strategies, sizer: sizer}
}

// PlaceAlgoTrade runs one decision cycle for the symbol using the named
// strategy. It returns the exchange order id, or "" for no trade.
func (e *AlgoExecutor) PlaceAlgoTrade(ctx context.Context, symbol, strategyName string) (string, error) {
	orderID, err := e.placeAlgoTrade(ctx, symbol, strategyName)
	recordDecision(orderID, err)
	return orderID, err
}

func (e *AlgoExecutor) placeAlgoTrade(ctx context.Context, symbol, strategyName string) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("symbol must be provided")
	}

	strategy, err := e.strategies.Lookup(strategyName)
	if err != nil {
		return "", err
	}

	log.Printf("Placing algo trade for symbol: %s using strategy: %s", symbol, strategyName)
	open, err := e.ex.HasOpenOrders(ctx, symbol, exchange.CategoryLinear)
	if err != nil {
		return "", fmt.Errorf("checking open orders for %s: %w", symbol, err)
	}
	if open {
		log.Printf("Skipping trade: open order already exists for %s", symbol)
		return "", nil
	}

	proposal, err := strategy.Run(ctx, symbol)
	if err != nil {
		return "", err
	}
	if proposal == nil {
		log.Printf("No trade opportunity returned by strategy.")
		return "", nil
	}

	order, err := e.sizer.BuildMarketOrder(ctx, proposal)
	if err != nil {
		return "", err
	}
	log.Printf("Final order request: %+v", order)

	return submitOrder(ctx, e.ex, order)
}
