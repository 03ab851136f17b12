package domain

import "time"

// Kline represents a single candlestick data point.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  Interval  // Kline interval (e.g., "1m", "1h")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Trading volume
}

// Date returns the wall-clock date (UTC, midnight) derived from the kline's open time.
func (k *Kline) Date() time.Time {
	y, m, d := k.OpenTime.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
