package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/position"
)

// Advisor is the AI port: given the strategy prompt and the market
// context, it returns a structured trade proposal.
type Advisor interface {
	ProposeTrade(ctx context.Context, symbol, systemMessage, userMessage string) (*TradeProposal, error)
}

// TradeProposal is the advisor's verdict. A nil Proposed with a valid
// reasoning is the explicit "no trade" outcome, distinct from a trade the
// confidence gate later rejects.
type TradeProposal struct {
	Reasoning        string
	CertaintyPercent int
	Proposed         *position.ProposedPosition
}

func (p *TradeProposal) String() string {
	if p.Proposed == nil {
		return fmt.Sprintf("no trade (certainty %d%%): %s", p.CertaintyPercent, p.Reasoning)
	}
	return fmt.Sprintf("%s (certainty %d%%): %s", p.Proposed, p.CertaintyPercent, p.Reasoning)
}

// tradeResponse mirrors the JSON schema the model is forced to emit.
type tradeResponse struct {
	Reasoning        string `json:"reasoning"`
	CertaintyPercent int    `json:"certaintyPercent"`
	Trade            struct {
		Side            string `json:"side"`
		EntryPrice      string `json:"entryPrice"`
		TakeProfitPrice string `json:"takeProfitPrice"`
		StopLossPrice   string `json:"stopLossPrice"`
	} `json:"trade"`
}

// toProposal validates a raw model response. Anything malformed is an
// error, never silently coerced into "no trade".
func toProposal(symbol string, resp tradeResponse) (*TradeProposal, error) {
	if strings.TrimSpace(resp.Reasoning) == "" {
		return nil, fmt.Errorf("reasoning must be provided")
	}
	if resp.CertaintyPercent < 0 || resp.CertaintyPercent > 100 {
		return nil, fmt.Errorf("certaintyPercent must be between 0 and 100, got %d", resp.CertaintyPercent)
	}

	side := strings.TrimSpace(resp.Trade.Side)
	if side == "" {
		return nil, fmt.Errorf("trade.side must be provided")
	}
	if strings.EqualFold(side, "NONE") {
		return &TradeProposal{Reasoning: resp.Reasoning, CertaintyPercent: resp.CertaintyPercent}, nil
	}

	orderSide, err := parseSide(side)
	if err != nil {
		return nil, err
	}
	entry, err := parsePrice(resp.Trade.EntryPrice, "trade.entryPrice")
	if err != nil {
		return nil, err
	}
	takeProfit, err := parsePrice(resp.Trade.TakeProfitPrice, "trade.takeProfitPrice")
	if err != nil {
		return nil, err
	}
	stopLoss, err := parsePrice(resp.Trade.StopLossPrice, "trade.stopLossPrice")
	if err != nil {
		return nil, err
	}

	proposed, err := position.NewProposedPosition(symbol, orderSide, entry, takeProfit, stopLoss)
	if err != nil {
		return nil, err
	}
	return &TradeProposal{
		Reasoning:        resp.Reasoning,
		CertaintyPercent: resp.CertaintyPercent,
		Proposed:         proposed,
	}, nil
}

func parseSide(value string) (exchange.OrderSide, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LONG":
		return exchange.SideLong, nil
	case "SHORT":
		return exchange.SideShort, nil
	default:
		return "", fmt.Errorf("trade.side must be LONG or SHORT (or NONE for no trade), got %q", value)
	}
}

func parsePrice(value, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, fmt.Errorf("%s must be provided", field)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal value, got %q", field, value)
	}
	return d, nil
}
