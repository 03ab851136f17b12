package ports

import (
	"context"
	"time"

	"cryptoTradeClient/internal/domain"
)

// OrderResult represents the essential details returned by the exchange for
// an order operation. It is produced fresh per call and never mutated
// afterwards. Failures never surface through this struct: transport and
// exchange errors are returned as typed errors alongside a nil result.
type OrderResult struct {
	OrderID       int64     // Exchange's order ID
	Symbol        string    // Symbol for the order
	ClientOrderID string    // Exchange-assigned or user-defined order ID
	Price         float64   // Price of the order (0 for market orders initially)
	OrigQuantity  float64   // Original quantity requested
	ExecutedQty   float64   // Quantity filled
	QuoteQty      float64   // Cumulative quote-asset quantity filled
	Status        string    // Order status (e.g., NEW, FILLED, CANCELED)
	TimeInForce   string    // Time in force (e.g., GTC)
	Type          string    // Order type (e.g., MARKET, LIMIT, STOP_LOSS)
	Side          string    // Order side (BUY, SELL)
	Timestamp     time.Time // Transaction or last-update time reported by the exchange
}

// ExchangeClient defines the interface for interacting with a cryptocurrency
// exchange. This is the entire surface the orchestration layer (CLI, strategy
// matching, backtesting) is allowed to depend on.
type ExchangeClient interface {
	// ListTradingSymbols fetches exchange metadata and returns the symbols
	// currently in TRADING status, filtered to the given quote assets (an
	// empty set means no quote filter), preserving the exchange's ordering.
	// A metadata fetch failure is logged and reported as an empty slice, not
	// an error: callers routinely retry discovery on their next round.
	ListTradingSymbols(ctx context.Context, quoteAssets []string) []domain.Symbol

	// GetKlines retrieves up to limit historical klines for the symbol,
	// ending at endTime (or at the present moment when endTime is zero).
	// Limits above the exchange's single-call maximum are satisfied by
	// paging backward in time and stitching the pages together; the result
	// is ascending by open time with no duplicate open times. A failure on
	// any page fails the whole call - no partial series is ever returned.
	GetKlines(ctx context.Context, symbol string, interval domain.Interval, limit int, endTime time.Time) ([]*domain.Kline, error)

	// PlaceOrder submits an order. When req.Test is set the order is routed
	// to the exchange's validation-only endpoint and is never executed.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*OrderResult, error)

	// CancelOrder cancels an open order by its exchange-assigned ID.
	CancelOrder(ctx context.Context, symbol string, orderID int64) (*OrderResult, error)

	// GetOrder retrieves the current state of a single order.
	GetOrder(ctx context.Context, symbol string, orderID int64) (*OrderResult, error)

	// GetAllOrders retrieves every order the account has on the symbol.
	GetAllOrders(ctx context.Context, symbol string) ([]*OrderResult, error)
}
