package position

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

// Fixed risk ceiling: 1% of the available balance may be lost if the stop
// is hit, fees included.
var maxRiskFraction = decimal.NewFromFloat(0.01)

// Bybit fee rates (as decimals). The entry is a market order, so the taker
// fee is charged against the risk budget; the maker fee is kept for
// symmetry with limit-based exits.
var (
	takerFee = decimal.NewFromFloat(0.00055) // 0.0550%
	makerFee = decimal.NewFromFloat(0.00020) // 0.0200%
)

const riskDivideScale = 16

// Sizer converts proposals into precision-correct, risk-bounded market
// order requests. It is stateless; every call re-reads instrument
// precision and wallet balance from the exchange.
type Sizer struct {
	ex exchange.Exchange
}

func NewSizer(ex exchange.Exchange) *Sizer {
	return &Sizer{ex: ex}
}

// BuildMarketOrder sizes the proposal so that (price risk + entry fee) per
// unit times the quantity stays within 1% of the wallet balance, rounds
// all prices to the instrument tick and caps the notional at the balance.
func (s *Sizer) BuildMarketOrder(ctx context.Context, proposed *ProposedPosition) (exchange.FuturesMarketOrderRequest, error) {
	var zero exchange.FuturesMarketOrderRequest
	if proposed == nil {
		return zero, fmt.Errorf("proposed position must be provided")
	}

	precision, err := s.ex.GetInstrumentPrecision(ctx, proposed.Symbol)
	if err != nil {
		return zero, fmt.Errorf("fetching instrument precision for %s: %w", proposed.Symbol, err)
	}
	if precision == nil {
		return zero, fmt.Errorf("no instrument precision returned for %s", proposed.Symbol)
	}

	tickSize := precision.TickSize
	qtyStep := precision.BasePrecision

	entry := exchange.RoundToStep(proposed.EntryPrice, tickSize)
	stopLoss := exchange.RoundToStep(proposed.StopLossPrice, tickSize)
	takeProfit := exchange.RoundToStep(proposed.TakeProfitPrice, tickSize)

	priceRiskPerUnit := entry.Sub(stopLoss).Abs()
	if priceRiskPerUnit.Sign() == 0 {
		return zero, fmt.Errorf("entryPrice and stopLossPrice must differ")
	}

	balance, err := s.ex.GetWalletBalance(ctx, exchange.AccountUnified)
	if err != nil {
		return zero, fmt.Errorf("fetching wallet balance: %w", err)
	}
	if balance.Sign() <= 0 {
		return zero, fmt.Errorf("no available wallet balance returned")
	}

	riskAmount := balance.Mul(maxRiskFraction)

	// Market entry pays the taker fee; count it against the budget so fee
	// drag cannot push realized loss past the risk fraction.
	entryFeePerUnit := entry.Mul(takerFee)
	riskPerUnit := priceRiskPerUnit.Add(entryFeePerUnit)

	rawQty := exchange.DivDown(riskAmount, riskPerUnit, riskDivideScale)
	qty := exchange.RoundDownToStep(rawQty, qtyStep)

	// Cap position size so the notional never exceeds the balance.
	if qty.Mul(entry).Cmp(balance) > 0 {
		maxQty := exchange.DivDown(balance, entry, riskDivideScale)
		qty = exchange.RoundDownToStep(maxQty, qtyStep)
	}

	if qty.Sign() <= 0 {
		return zero, fmt.Errorf("calculated quantity is too small for the instrument precision")
	}

	return exchange.FuturesMarketOrderRequest{
		Symbol:     proposed.Symbol,
		Category:   exchange.CategoryLinear,
		Side:       proposed.Side,
		Quantity:   qty,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
	}, nil
}
