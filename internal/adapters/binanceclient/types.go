package binanceclient

import (
	"encoding/json"
	"fmt"

	"cryptoTradeClient/internal/ports"
)

// transportFailureCode is the sentinel error code used when no response from
// the exchange was obtained (network failure) or the response body could not
// be parsed. Real exchange error codes are always more negative than this.
const transportFailureCode = -1

// APIError is an error reported by the exchange (or synthesized by the
// transport for network/parse failures). The exchange's code and message are
// carried through unchanged so callers can branch on them.
type APIError struct {
	Code    int64  `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange API error (code: %d, message: %s)", e.Code, e.Message)
}

// populated reports whether the deserialized body actually held an error.
// Useful when probing a response payload that may or may not be an error.
func (e *APIError) populated() bool {
	return e != nil && e.Code != 0 && e.Message != ""
}

// transportError wraps a network-level failure in the uniform error shape.
func transportError(err error) *APIError {
	return &APIError{Code: transportFailureCode, Message: err.Error()}
}

// malformedError wraps an unparseable-body fault in the uniform error shape.
// It carries the same sentinel code as a transport failure but is tagged with
// ports.ErrMalformedResponse so callers can tell the two apart.
func malformedError(err error) error {
	return fmt.Errorf("%w: %w", ports.ErrMalformedResponse, transportError(err))
}

// exchangeInfoResponse is the subset of the exchangeInfo payload this client
// consumes.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// orderResponse covers the order, allOrders, and cancel payloads. Numeric
// amounts arrive as strings and are parsed during translation.
type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	OrigClientOrderID   string `json:"origClientOrderId"`
	TransactTime        int64  `json:"transactTime"`
	Time                int64  `json:"time"`
	UpdateTime          int64  `json:"updateTime"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	TimeInForce         string `json:"timeInForce"`
	Type                string `json:"type"`
	Side                string `json:"side"`
}

// The klines endpoint returns each candlestick as a mixed-type JSON array:
//
//	[0]  1499040000000,      // Open time (ms)
//	[1]  "0.01634790",       // Open
//	[2]  "0.80000000",       // High
//	[3]  "0.01575800",       // Low
//	[4]  "0.01577100",       // Close
//	[5]  "148976.11427815",  // Volume
//	[6]  1499644799999,      // Close time (ms)
//	[7..11]                  // Quote volume, trades, taker volumes - unused
type klineRow struct {
	OpenTime  int64
	CloseTime int64
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
}

const (
	openTimeIndex  = 0
	openIndex      = 1
	highIndex      = 2
	lowIndex       = 3
	closeIndex     = 4
	volumeIndex    = 5
	closeTimeIndex = 6
)

// UnmarshalJSON decodes the positional kline array. Unknown JSON numbers
// decode as float64, so timestamps need an explicit conversion.
func (k *klineRow) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) <= closeTimeIndex {
		return fmt.Errorf("kline array too short: %d fields", len(raw))
	}

	openTime, ok := raw[openTimeIndex].(float64)
	if !ok {
		return fmt.Errorf("unexpected open time type (%+v)", raw[openTimeIndex])
	}
	k.OpenTime = int64(openTime)

	closeTime, ok := raw[closeTimeIndex].(float64)
	if !ok {
		return fmt.Errorf("unexpected close time type (%+v)", raw[closeTimeIndex])
	}
	k.CloseTime = int64(closeTime)

	for _, f := range []struct {
		idx  int
		name string
		dst  *string
	}{
		{openIndex, "open", &k.Open},
		{highIndex, "high", &k.High},
		{lowIndex, "low", &k.Low},
		{closeIndex, "close", &k.Close},
		{volumeIndex, "volume", &k.Volume},
	} {
		s, ok := raw[f.idx].(string)
		if !ok {
			return fmt.Errorf("unexpected %s type (%+v)", f.name, raw[f.idx])
		}
		*f.dst = s
	}

	return nil
}
