package ai

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

func response(side, entry, tp, sl string) tradeResponse {
	resp := tradeResponse{Reasoning: "clean breakout with volume", CertaintyPercent: 75}
	resp.Trade.Side = side
	resp.Trade.EntryPrice = entry
	resp.Trade.TakeProfitPrice = tp
	resp.Trade.StopLossPrice = sl
	return resp
}

func TestToProposalValidTrade(t *testing.T) {
	proposal, err := toProposal("BTCUSDT", response("LONG", "100.5", "110.25", "95"))
	if err != nil {
		t.Fatalf("toProposal failed: %v", err)
	}
	if proposal.Proposed == nil {
		t.Fatal("expected a concrete trade")
	}
	if proposal.Proposed.Side != exchange.SideLong {
		t.Errorf("Side = %s, want LONG", proposal.Proposed.Side)
	}
	if !proposal.Proposed.EntryPrice.Equal(decimal.RequireFromString("100.5")) {
		t.Errorf("EntryPrice = %s, want 100.5", proposal.Proposed.EntryPrice)
	}
	if proposal.CertaintyPercent != 75 {
		t.Errorf("CertaintyPercent = %d, want 75", proposal.CertaintyPercent)
	}
}

func TestToProposalAcceptsLowercaseSide(t *testing.T) {
	proposal, err := toProposal("BTCUSDT", response("short", "100", "90", "105"))
	if err != nil {
		t.Fatalf("toProposal failed: %v", err)
	}
	if proposal.Proposed == nil || proposal.Proposed.Side != exchange.SideShort {
		t.Fatalf("expected SHORT trade, got %v", proposal.Proposed)
	}
}

func TestToProposalNoneIsNoTrade(t *testing.T) {
	for _, side := range []string{"NONE", "none", "None", " NONE "} {
		resp := response(side, "", "", "")
		resp.CertaintyPercent = 80

		proposal, err := toProposal("BTCUSDT", resp)
		if err != nil {
			t.Errorf("side %q: unexpected error: %v", side, err)
			continue
		}
		if proposal.Proposed != nil {
			t.Errorf("side %q: expected no trade, got %s", side, proposal.Proposed)
		}
		if proposal.CertaintyPercent != 80 {
			t.Errorf("side %q: certainty not preserved, got %d", side, proposal.CertaintyPercent)
		}
		if proposal.Reasoning == "" {
			t.Errorf("side %q: reasoning lost", side)
		}
	}
}

// Malformed responses must fail loudly, never degrade into "no trade".
func TestToProposalRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		resp tradeResponse
	}{
		{"unknown side", response("HOLD", "100", "110", "95")},
		{"blank side", response("", "100", "110", "95")},
		{"unparseable entry", response("LONG", "about 100", "110", "95")},
		{"missing take profit", response("LONG", "100", "", "95")},
		{"unparseable stop loss", response("LONG", "100", "110", "n/a")},
		{"negative entry", response("LONG", "-100", "110", "95")},
	}
	for _, tc := range tests {
		if _, err := toProposal("BTCUSDT", tc.resp); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	blank := response("LONG", "100", "110", "95")
	blank.Reasoning = "  "
	if _, err := toProposal("BTCUSDT", blank); err == nil {
		t.Error("blank reasoning: expected error")
	}

	for _, certainty := range []int{-1, 101} {
		resp := response("NONE", "", "", "")
		resp.CertaintyPercent = certainty
		if _, err := toProposal("BTCUSDT", resp); err == nil {
			t.Errorf("certainty %d: expected error", certainty)
		}
	}
}
