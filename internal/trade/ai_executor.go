// Package trade sequences a full decision cycle: idempotency guards,
// signal acquisition, confidence gating, sizing and order submission. It
// also owns the per-symbol recurring schedule registry.
package trade

import (
	"context"
	"fmt"
	"log"

	"github.com/tomislav-safran/vibe-trader/internal/ai"
	"github.com/tomislav-safran/vibe-trader/internal/config"
	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/metrics"
	"github.com/tomislav-safran/vibe-trader/internal/position"
)

// AiExecutor runs the advisor-driven decision pipeline. It holds no state
// between calls; every cycle re-reads live exchange data.
type AiExecutor struct {
	ex           exchange.Exchange
	advisor      ai.Advisor
	sizer        *position.Sizer
	loadSettings func(name string) (*config.TradeAiSettings, error)
}

func NewAiExecutor(ex exchange.Exchange, advisor ai.Advisor, sizer *position.Sizer) *AiExecutor {
	return &AiExecutor{
		ex:           ex,
		advisor:      advisor,
		sizer:        sizer,
		loadSettings: config.LoadTradeAiSettings,
	}
}

// CraftAndPlaceTrade runs one decision cycle for the symbol using the
// named AI profile. It returns the exchange order id, or "" when the
// cycle deliberately placed no trade.
func (e *AiExecutor) CraftAndPlaceTrade(ctx context.Context, symbol, configName string) (string, error) {
	orderID, err := e.craftAndPlaceTrade(ctx, symbol, configName)
	recordDecision(orderID, err)
	return orderID, err
}

func (e *AiExecutor) craftAndPlaceTrade(ctx context.Context, symbol, configName string) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("symbol must be provided")
	}

	settings, err := e.loadSettings(configName)
	if err != nil {
		return "", err
	}

	log.Printf("Placing trade for symbol: %s", symbol)
	open, err := e.ex.HasOpenOrders(ctx, symbol, exchange.CategoryLinear)
	if err != nil {
		return "", fmt.Errorf("checking open orders for %s: %w", symbol, err)
	}
	if open {
		log.Printf("Skipping trade: open order already exists for %s", symbol)
		return "", nil
	}

	systemMessage := buildSystemMessage(settings)
	userMessage, err := e.buildUserMessage(ctx, symbol, settings)
	if err != nil {
		return "", err
	}

	log.Printf("Prompting AI...")
	proposal, err := e.advisor.ProposeTrade(ctx, symbol, systemMessage, userMessage)
	if err != nil {
		return "", err
	}
	log.Printf("AI response: %s", proposal)

	// Gate on confidence before the no-trade check so a low-confidence
	// proposal and an explicit "no trade" stay distinguishable in the log.
	if proposal.CertaintyPercent < settings.CertaintyThreshold {
		log.Printf("Trade skipped: certainty %d below threshold %d", proposal.CertaintyPercent, settings.CertaintyThreshold)
		return "", nil
	}
	if proposal.Proposed == nil {
		log.Printf("No trade opportunity returned by AI.")
		return "", nil
	}

	order, err := e.sizer.BuildMarketOrder(ctx, proposal.Proposed)
	if err != nil {
		return "", err
	}
	log.Printf("Final order request: %+v", order)

	return submitOrder(ctx, e.ex, order)
}

// submitOrder places the order and refuses to treat an id-less acceptance
// as success; an ambiguous submission must surface as a failure.
func submitOrder(ctx context.Context, ex exchange.Exchange, order exchange.FuturesMarketOrderRequest) (string, error) {
	orderID, err := ex.PlaceFuturesMarketOrder(ctx, order)
	if err != nil {
		return "", err
	}
	if orderID == "" {
		return "", fmt.Errorf("order placement returned no order id")
	}
	metrics.IncOrder(string(order.Side))
	return orderID, nil
}

func recordDecision(orderID string, err error) {
	switch {
	case err != nil:
		metrics.IncDecision(metrics.OutcomeError)
	case orderID == "":
		metrics.IncDecision(metrics.OutcomeNoTrade)
	default:
		metrics.IncDecision(metrics.OutcomePlaced)
	}
}
