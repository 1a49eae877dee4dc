package position

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
)

// mockExchange scripts the two calls the sizer makes.
type mockExchange struct {
	precision    *exchange.InstrumentPrecision
	precisionErr error
	balance      decimal.Decimal
	balanceErr   error
}

func (m *mockExchange) GetKlines(ctx context.Context, symbol string, category exchange.Category, interval exchange.Interval, limit int) ([]exchange.Candle, error) {
	return nil, nil
}

func (m *mockExchange) PlaceFuturesMarketOrder(ctx context.Context, req exchange.FuturesMarketOrderRequest) (string, error) {
	return "", nil
}

func (m *mockExchange) GetWalletBalance(ctx context.Context, accountType exchange.AccountType) (decimal.Decimal, error) {
	return m.balance, m.balanceErr
}

func (m *mockExchange) GetInstrumentPrecision(ctx context.Context, symbol string) (*exchange.InstrumentPrecision, error) {
	return m.precision, m.precisionErr
}

func (m *mockExchange) HasOpenOrders(ctx context.Context, symbol string, category exchange.Category) (bool, error) {
	return false, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustProposal(t *testing.T, side exchange.OrderSide, entry, tp, sl string) *ProposedPosition {
	t.Helper()
	p, err := NewProposedPosition("BTCUSDT", side, d(entry), d(tp), d(sl))
	if err != nil {
		t.Fatalf("building proposal: %v", err)
	}
	return p
}

func TestBuildMarketOrderSizesWithinRiskBudget(t *testing.T) {
	ex := &mockExchange{
		precision: &exchange.InstrumentPrecision{BasePrecision: d("0.001"), TickSize: d("0.5")},
		balance:   d("10000"),
	}
	sizer := NewSizer(ex)

	// Off-tick prices: entry 100.3 -> 100.5, tp 110.7 -> 110.5, sl 95.2 -> 95.
	order, err := sizer.BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideLong, "100.3", "110.7", "95.2"))
	if err != nil {
		t.Fatalf("BuildMarketOrder failed: %v", err)
	}

	if order.Symbol != "BTCUSDT" || order.Category != exchange.CategoryLinear || order.Side != exchange.SideLong {
		t.Errorf("unexpected order identity: %+v", order)
	}
	if !order.TakeProfit.Equal(d("110.5")) {
		t.Errorf("TakeProfit = %s, want 110.5", order.TakeProfit)
	}
	if !order.StopLoss.Equal(d("95")) {
		t.Errorf("StopLoss = %s, want 95", order.StopLoss)
	}

	// risk budget 100, per-unit risk 5.5 + 100.5*0.00055 = 5.555275,
	// raw qty 18.0009... floored to the 0.001 step.
	if !order.Quantity.Equal(d("18")) {
		t.Errorf("Quantity = %s, want 18", order.Quantity)
	}

	// Worst-case loss (price risk + entry fee) must stay within 1% of balance.
	riskPerUnit := d("100.5").Sub(d("95")).Add(d("100.5").Mul(d("0.00055")))
	loss := order.Quantity.Mul(riskPerUnit)
	if loss.Cmp(d("100")) > 0 {
		t.Errorf("worst-case loss %s exceeds risk budget 100", loss)
	}
}

func TestBuildMarketOrderCapsNotionalAtBalance(t *testing.T) {
	ex := &mockExchange{
		precision: &exchange.InstrumentPrecision{BasePrecision: d("0.1"), TickSize: d("0.5")},
		balance:   d("1000"),
	}
	sizer := NewSizer(ex)

	// Tight stop: risk sizing alone would ask for 18 units (1800 notional).
	order, err := sizer.BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideLong, "100", "101", "99.5"))
	if err != nil {
		t.Fatalf("BuildMarketOrder failed: %v", err)
	}
	if !order.Quantity.Equal(d("10")) {
		t.Errorf("Quantity = %s, want 10 (balance / entry)", order.Quantity)
	}
	if order.Quantity.Mul(d("100")).Cmp(d("1000")) > 0 {
		t.Errorf("notional %s exceeds balance", order.Quantity.Mul(d("100")))
	}
}

func TestBuildMarketOrderRejectsZeroPriceRisk(t *testing.T) {
	ex := &mockExchange{
		precision: &exchange.InstrumentPrecision{BasePrecision: d("0.001"), TickSize: d("0.5")},
		balance:   d("10000"),
	}
	sizer := NewSizer(ex)

	// Entry and stop collapse onto the same tick.
	_, err := sizer.BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideLong, "100.1", "105", "100.2"))
	if err == nil {
		t.Fatal("expected error when entry and stop round to the same tick")
	}
}

func TestBuildMarketOrderRejectsQuantityBelowStep(t *testing.T) {
	ex := &mockExchange{
		precision: &exchange.InstrumentPrecision{BasePrecision: d("1"), TickSize: d("0.5")},
		balance:   d("100"),
	}
	sizer := NewSizer(ex)

	// Risk budget of 1 buys far less than one whole unit.
	_, err := sizer.BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideLong, "30000", "30600", "29700"))
	if err == nil {
		t.Fatal("expected error when sized quantity rounds down to zero")
	}
}

func TestBuildMarketOrderRequiresPrecision(t *testing.T) {
	sizer := NewSizer(&mockExchange{precision: nil, balance: d("1000")})
	_, err := sizer.BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideLong, "100", "110", "95"))
	if err == nil {
		t.Fatal("expected error when instrument precision is unknown")
	}
}

func TestBuildMarketOrderRequiresPositiveBalance(t *testing.T) {
	ex := &mockExchange{
		precision: &exchange.InstrumentPrecision{BasePrecision: d("0.001"), TickSize: d("0.5")},
		balance:   decimal.Zero,
	}
	_, err := NewSizer(ex).BuildMarketOrder(context.Background(), mustProposal(t, exchange.SideShort, "100", "90", "105"))
	if err == nil {
		t.Fatal("expected error when wallet balance is zero")
	}
}

func TestBuildMarketOrderRejectsNilProposal(t *testing.T) {
	if _, err := NewSizer(&mockExchange{}).BuildMarketOrder(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil proposal")
	}
}

func TestNewProposedPositionValidation(t *testing.T) {
	if _, err := NewProposedPosition(" ", exchange.SideLong, d("1"), d("2"), d("0.5")); err == nil {
		t.Error("expected error for blank symbol")
	}
	if _, err := NewProposedPosition("BTCUSDT", "HOLD", d("1"), d("2"), d("0.5")); err == nil {
		t.Error("expected error for invalid side")
	}
	if _, err := NewProposedPosition("BTCUSDT", exchange.SideLong, d("0"), d("2"), d("0.5")); err == nil {
		t.Error("expected error for non-positive entry price")
	}
}
