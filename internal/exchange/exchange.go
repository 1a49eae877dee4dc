package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

// Exchange is the market data and account port. Any venue that implements
// these methods can back the trading pipeline; tests swap in mocks.
type Exchange interface {
	// GetKlines fetches up to limit recent candles. Ordering is venue-defined.
	GetKlines(ctx context.Context, symbol string, category Category, interval Interval, limit int) ([]Candle, error)

	// PlaceFuturesMarketOrder submits a market order and returns the venue order id.
	PlaceFuturesMarketOrder(ctx context.Context, req FuturesMarketOrderRequest) (string, error)

	// GetWalletBalance returns the total available balance for the account type.
	GetWalletBalance(ctx context.Context, accountType AccountType) (decimal.Decimal, error)

	// GetInstrumentPrecision returns the instrument's step sizes, or nil if the
	// symbol is unknown to the venue.
	GetInstrumentPrecision(ctx context.Context, symbol string) (*InstrumentPrecision, error)

	// HasOpenOrders reports whether any open order exists for the symbol.
	HasOpenOrders(ctx context.Context, symbol string, category Category) (bool, error)
}
