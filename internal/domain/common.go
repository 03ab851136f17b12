package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// IsValid reports whether the side is one of the accepted values.
func (s OrderSide) IsValid() bool {
	return s == Buy || s == Sell
}

// OrderType represents the execution type of an order.
type OrderType string

const (
	OrderTypeMarket   OrderType = "MARKET"
	OrderTypeLimit    OrderType = "LIMIT"
	OrderTypeStopLoss OrderType = "STOP_LOSS"
)

// IsValid reports whether the order type is one of the accepted values.
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStopLoss:
		return true
	}
	return false
}

// RequiresPrice reports whether the exchange demands an explicit price
// (and a time-in-force) for this order type.
func (t OrderType) RequiresPrice() bool {
	return t != OrderTypeMarket
}

// TimeInForce indicates how long an order remains active.
type TimeInForce string

// GTC (good-till-canceled) is the only time-in-force this client submits.
const TimeInForceGTC TimeInForce = "GTC"

// SymbolStatus represents the trading status of a symbol on the exchange.
type SymbolStatus string

const (
	StatusPreTrading   SymbolStatus = "PRE_TRADING"
	StatusTrading      SymbolStatus = "TRADING"
	StatusPostTrading  SymbolStatus = "POST_TRADING"
	StatusEndOfDay     SymbolStatus = "END_OF_DAY"
	StatusHalt         SymbolStatus = "HALT"
	StatusAuctionMatch SymbolStatus = "AUCTION_MATCH"
	StatusBreak        SymbolStatus = "BREAK"
)

// IsTradable reports whether data and order operations are allowed for a
// symbol in this status. Only TRADING qualifies.
func (s SymbolStatus) IsTradable() bool {
	return s == StatusTrading
}

// Interval represents a kline granularity accepted by the exchange.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

var validIntervals = map[Interval]struct{}{
	Interval1m: {}, Interval3m: {}, Interval5m: {}, Interval15m: {}, Interval30m: {},
	Interval1h: {}, Interval2h: {}, Interval4h: {}, Interval6h: {}, Interval8h: {}, Interval12h: {},
	Interval1d: {}, Interval3d: {}, Interval1w: {}, Interval1M: {},
}

// IsValid reports whether the interval belongs to the closed set the
// exchange accepts. Requests with any other value are rejected before a
// call is issued.
func (i Interval) IsValid() bool {
	_, ok := validIntervals[i]
	return ok
}
