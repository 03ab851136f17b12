package ports

import (
	"context"
	"time"

	"cryptoTradeClient/internal/domain"
)

// KlineRepository defines the interface for persisting fetched kline series
// so long backfills do not have to be re-downloaded.
type KlineRepository interface {
	// SaveKlines stores the given klines, replacing any existing rows with
	// the same (symbol, interval, open time) key.
	SaveKlines(ctx context.Context, klines []*domain.Kline) error

	// FindKlines returns stored klines for the symbol/interval whose open
	// time falls within [from, to], ascending by open time.
	FindKlines(ctx context.Context, symbol string, interval domain.Interval, from, to time.Time) ([]*domain.Kline, error)

	// CountKlines returns the number of stored klines for the symbol/interval.
	CountKlines(ctx context.Context, symbol string, interval domain.Interval) (int64, error)

	// Close releases the underlying storage handle.
	Close() error
}
