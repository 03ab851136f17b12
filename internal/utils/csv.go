package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"cryptoTradeClient/internal/domain"
)

// WriteKlinesToCSV exports a kline series for offline inspection. The date
// column is the wall-clock date derived from the open time.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"date", "open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, k := range klines {
		record := []string{
			k.Date().Format("2006-01-02"),
			k.OpenTime.Format(time.RFC3339),
			k.CloseTime.Format(time.RFC3339),
			k.Symbol,
			string(k.Interval),
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
