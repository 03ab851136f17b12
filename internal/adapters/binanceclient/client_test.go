package binanceclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"cryptoTradeClient/internal/domain"
	"cryptoTradeClient/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(Config{
		APIKey:    "test-api-key",
		SecretKey: testSecretKey,
		BaseURL:   baseURL,
		Logger:    &mockLogger{},
	})
	require.NoError(t, err)
	return client
}

// --- Kline fixtures ---

const klineStepMs = int64(60_000) // 1m interval

// seriesBase anchors the synthetic kline history: candle j opens at
// seriesBase + j*klineStepMs.
const seriesBase = int64(1_600_000_000_000)

// klineFixtureServer serves a deterministic kline history. For a request
// with endTime E and limit L it returns the L most recent candles whose open
// time is <= E, ascending, in the venue's array-of-arrays shape.
func klineFixtureServer(t *testing.T, requests *[]string, failOnCall int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, r.URL.RawQuery)
		if failOnCall > 0 && len(*requests) == failOnCall {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		q := r.URL.Query()
		limit, err := strconv.Atoi(q.Get("limit"))
		require.NoError(t, err)

		end := seriesBase + 99_999*klineStepMs
		if raw := q.Get("endTime"); raw != "" {
			end, err = strconv.ParseInt(raw, 10, 64)
			require.NoError(t, err)
		}

		maxJ := (end - seriesBase) / klineStepMs
		rows := make([][]interface{}, 0, limit)
		for j := maxJ - int64(limit) + 1; j <= maxJ; j++ {
			openTime := seriesBase + j*klineStepMs
			rows = append(rows, []interface{}{
				openTime, "100.10", "101.20", "99.30", "100.90", "12.34",
				openTime + klineStepMs - 1, "1234.5", 42, "6.17", "617.25", "0",
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(rows))
	}))
}

func TestGetKlines_SinglePage(t *testing.T) {
	var requests []string
	server := klineFixtureServer(t, &requests, 0)
	defer server.Close()

	client := newTestClient(t, server.URL)
	end := time.UnixMilli(seriesBase + 9_999*klineStepMs)

	klines, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 100, end)
	require.NoError(t, err)
	require.Len(t, klines, 100)
	require.Len(t, requests, 1)

	assert.Equal(t, time.UnixMilli(seriesBase+9_900*klineStepMs), klines[0].OpenTime)
	assert.Equal(t, end, klines[len(klines)-1].OpenTime)
	assert.Equal(t, 100.10, klines[0].Open)
	assert.Equal(t, 100.90, klines[0].Close)
	assert.Equal(t, "ETHUSDT", klines[0].Symbol)
	assert.Equal(t, domain.Interval1m, klines[0].Interval)
}

func TestGetKlines_StitchesPagesBeyondSingleCallLimit(t *testing.T) {
	var requests []string
	server := klineFixtureServer(t, &requests, 0)
	defer server.Close()

	client := newTestClient(t, server.URL)
	end := time.UnixMilli(seriesBase + 9_999*klineStepMs)

	klines, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 2500, end)
	require.NoError(t, err)

	// Three physical calls: the 500 remainder first, then two full pages
	// walking backward in time.
	require.Len(t, requests, 3)
	assert.Contains(t, requests[0], "limit=500")
	assert.Contains(t, requests[1], "limit=1000")
	assert.Contains(t, requests[2], "limit=1000")

	require.Len(t, klines, 2500)
	assert.Equal(t, time.UnixMilli(seriesBase+7_500*klineStepMs), klines[0].OpenTime)
	assert.Equal(t, end, klines[len(klines)-1].OpenTime)

	// Strictly ascending open times, so no duplicates at page boundaries.
	for i := 1; i < len(klines); i++ {
		assert.True(t, klines[i-1].OpenTime.Before(klines[i].OpenTime),
			"open times not strictly ascending at index %d", i)
	}
}

func TestGetKlines_ExactMultipleOfPageSize(t *testing.T) {
	var requests []string
	server := klineFixtureServer(t, &requests, 0)
	defer server.Close()

	client := newTestClient(t, server.URL)
	end := time.UnixMilli(seriesBase + 9_999*klineStepMs)

	klines, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 2000, end)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Len(t, klines, 2000)
}

func TestGetKlines_PageFailureAbortsWholeFetch(t *testing.T) {
	var requests []string
	server := klineFixtureServer(t, &requests, 2) // fail the second physical call
	defer server.Close()

	client := newTestClient(t, server.URL)
	end := time.UnixMilli(seriesBase + 9_999*klineStepMs)

	klines, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 2500, end)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)
	// No partial series: a silent 500-row result would corrupt downstream use.
	assert.Nil(t, klines)
	assert.Len(t, requests, 2)
}

func TestGetKlines_RejectsInvalidInput(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")

	_, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval("7q"), 100, time.Time{})
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	_, err = client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 0, time.Time{})
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestMergePages_DeduplicatesBoundary(t *testing.T) {
	mk := func(openMs int64) *domain.Kline {
		return &domain.Kline{OpenTime: time.UnixMilli(openMs)}
	}

	// The older page overlaps the newer series on its last two candles.
	older := []*domain.Kline{mk(100), mk(200), mk(300), mk(400)}
	newer := []*domain.Kline{mk(300), mk(400), mk(500)}

	merged := mergePages(older, newer)
	require.Len(t, merged, 5)
	for i, wantMs := range []int64{100, 200, 300, 400, 500} {
		assert.Equal(t, time.UnixMilli(wantMs), merged[i].OpenTime)
	}
}

// --- Symbol discovery ---

const exchangeInfoFixture = `{
	"symbols": [
		{"symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC"},
		{"symbol": "LINKETH", "status": "TRADING", "baseAsset": "LINK", "quoteAsset": "ETH"},
		{"symbol": "BNBETH", "status": "BREAK", "baseAsset": "BNB", "quoteAsset": "ETH"},
		{"symbol": "ADAETH", "status": "TRADING", "baseAsset": "ADA", "quoteAsset": "ETH"},
		{"symbol": "LTCUSDT", "status": "HALT", "baseAsset": "LTC", "quoteAsset": "USDT"}
	]
}`

func TestListTradingSymbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		_, _ = w.Write([]byte(exchangeInfoFixture))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	t.Run("quote filter", func(t *testing.T) {
		symbols := client.ListTradingSymbols(context.Background(), []string{"ETH"})
		// Only TRADING symbols quoted in ETH, in source order.
		require.Len(t, symbols, 2)
		assert.Equal(t, "LINKETH", symbols[0].Symbol)
		assert.Equal(t, "ADAETH", symbols[1].Symbol)
		assert.Equal(t, domain.StatusTrading, symbols[0].Status)
	})

	t.Run("no filter", func(t *testing.T) {
		symbols := client.ListTradingSymbols(context.Background(), nil)
		require.Len(t, symbols, 3)
		assert.Equal(t, "ETHBTC", symbols[0].Symbol)
	})
}

func TestListTradingSymbols_FailureYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := newTestClient(t, server.URL)
	symbols := client.ListTradingSymbols(context.Background(), []string{"ETH"})
	assert.Empty(t, symbols)
}

// --- Order lifecycle ---

type recordedRequest struct {
	method   string
	path     string
	rawQuery string
	apiKey   string
}

// orderFixtureServer records each request, verifies its signature against
// the test secret, and serves the given body.
func orderFixtureServer(t *testing.T, recorded *[]recordedRequest, status int, body string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*recorded = append(*recorded, recordedRequest{
			method:   r.Method,
			path:     r.URL.Path,
			rawQuery: r.URL.RawQuery,
			apiKey:   r.Header.Get("X-MBX-APIKEY"),
		})

		// The signature must cover the query string exactly as sent, minus
		// the trailing signature parameter itself.
		idx := strings.Index(r.URL.RawQuery, "&signature=")
		require.Positive(t, idx, "request is unsigned: %s", r.URL.RawQuery)
		payload := r.URL.RawQuery[:idx]
		mac := hmac.New(sha256.New, []byte(testSecretKey))
		mac.Write([]byte(payload))
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.URL.RawQuery[idx+len("&signature="):])

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

const liveOrderFixture = `{
	"symbol": "ETHUSDT",
	"orderId": 28,
	"clientOrderId": "6gCrw2kRUAF9CvJDGP16IP",
	"transactTime": 1507725176595,
	"price": "1500.00000000",
	"origQty": "10.00000000",
	"executedQty": "10.00000000",
	"cummulativeQuoteQty": "15000.00000000",
	"status": "FILLED",
	"timeInForce": "GTC",
	"type": "LIMIT",
	"side": "BUY"
}`

func TestPlaceOrder_TestAndLiveEndpointsDiffer(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, `{}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	req := domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Buy,
		Type:     domain.OrderTypeLimit,
		Quantity: 100,
		Price:    1500,
		Test:     true,
	}

	_, err := client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	req.Test = false
	_, err = client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, recorded, 2)
	assert.Equal(t, "/api/v3/order/test", recorded[0].path)
	assert.Equal(t, "/api/v3/order", recorded[1].path)
	assert.NotEqual(t, recorded[0].path, recorded[1].path)
	for _, rec := range recorded {
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "test-api-key", rec.apiKey)
	}
}

func TestPlaceOrder_LimitOrderParameters(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, liveOrderFixture)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Buy,
		Type:     domain.OrderTypeLimit,
		Quantity: 100,
		Price:    0.0000001,
	})
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	q := recorded[0].rawQuery
	assert.Contains(t, q, "symbol=ETHUSDT")
	assert.Contains(t, q, "side=BUY")
	assert.Contains(t, q, "type=LIMIT")
	assert.Contains(t, q, "quoteOrderQty=100")
	assert.Contains(t, q, "timeInForce=GTC")
	// The price never degrades into exponent notation on the wire.
	assert.Contains(t, q, "price=0.0000001")
	assert.Contains(t, q, "recvWindow=5000")
	assert.Contains(t, q, "timestamp=")

	assert.Equal(t, int64(28), result.OrderID)
	assert.Equal(t, "FILLED", result.Status)
	assert.Equal(t, 1500.0, result.Price)
	assert.Equal(t, 15000.0, result.QuoteQty)
	assert.Equal(t, time.UnixMilli(1507725176595), result.Timestamp)
}

func TestPlaceOrder_MarketOrderOmitsPriceAndTimeInForce(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, `{}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Sell,
		Type:     domain.OrderTypeMarket,
		Quantity: 50,
		Test:     true,
	})
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.NotContains(t, recorded[0].rawQuery, "price=")
	assert.NotContains(t, recorded[0].rawQuery, "timeInForce=")
}

func TestPlaceOrder_VenueErrorPassesThroughUnchanged(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusBadRequest,
		`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Buy,
		Type:     domain.OrderTypeMarket,
		Quantity: 100,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ports.ErrOrderPlacementFailed)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(-2010), apiErr.Code)
	assert.Equal(t, "Account has insufficient balance for requested action.", apiErr.Message)
}

func TestPlaceOrder_TransportFailureYieldsSentinelCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := newTestClient(t, server.URL)
	result, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Buy,
		Type:     domain.OrderTypeMarket,
		Quantity: 100,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(-1), apiErr.Code)
	assert.NotEmpty(t, apiErr.Message)
}

func TestMalformedResponseYieldsParseFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"valid`)) // truncated body
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	assertParseFault := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrMalformedResponse)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, int64(-1), apiErr.Code)
		assert.NotEmpty(t, apiErr.Message)
	}

	t.Run("klines", func(t *testing.T) {
		klines, err := client.GetKlines(context.Background(), "ETHUSDT", domain.Interval1m, 100, time.Time{})
		assert.Nil(t, klines)
		assertParseFault(t, err)
	})

	t.Run("place order", func(t *testing.T) {
		result, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
			Symbol:   "ETHUSDT",
			Side:     domain.Buy,
			Type:     domain.OrderTypeMarket,
			Quantity: 100,
		})
		assert.Nil(t, result)
		assertParseFault(t, err)
	})

	t.Run("all orders", func(t *testing.T) {
		results, err := client.GetAllOrders(context.Background(), "ETHUSDT")
		assert.Nil(t, results)
		assertParseFault(t, err)
	})
}

func TestPlaceOrder_MissingCredentials(t *testing.T) {
	client, err := New(Config{
		BaseURL: "http://unused.invalid",
		Logger:  &mockLogger{},
	})
	require.NoError(t, err)

	_, err = client.PlaceOrder(context.Background(), domain.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     domain.Buy,
		Type:     domain.OrderTypeMarket,
		Quantity: 100,
		Test:     true,
	})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestCancelOrder(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, `{
		"symbol": "ETHUSDT",
		"orderId": 28,
		"origClientOrderId": "6gCrw2kRUAF9CvJDGP16IP",
		"price": "1500.00000000",
		"origQty": "10.00000000",
		"executedQty": "0.00000000",
		"cummulativeQuoteQty": "0.00000000",
		"status": "CANCELED",
		"timeInForce": "GTC",
		"type": "LIMIT",
		"side": "BUY"
	}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CancelOrder(context.Background(), "ETHUSDT", 28)
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, http.MethodDelete, recorded[0].method)
	assert.Equal(t, "/api/v3/order", recorded[0].path)
	assert.Contains(t, recorded[0].rawQuery, "orderId=28")

	assert.Equal(t, "CANCELED", result.Status)
	assert.Equal(t, "6gCrw2kRUAF9CvJDGP16IP", result.ClientOrderID)
}

func TestGetOrder(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, liveOrderFixture)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.GetOrder(context.Background(), "ETHUSDT", 28)
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, http.MethodGet, recorded[0].method)
	assert.Equal(t, "/api/v3/order", recorded[0].path)
	assert.Equal(t, int64(28), result.OrderID)
	assert.Equal(t, "FILLED", result.Status)
}

func TestGetAllOrders(t *testing.T) {
	var recorded []recordedRequest
	server := orderFixtureServer(t, &recorded, http.StatusOK, `[
		{"symbol": "ETHUSDT", "orderId": 1, "price": "1500.0", "origQty": "1.0",
		 "executedQty": "1.0", "cummulativeQuoteQty": "1500.0", "status": "FILLED",
		 "timeInForce": "GTC", "type": "LIMIT", "side": "BUY", "time": 1507725176595},
		{"symbol": "ETHUSDT", "orderId": 2, "price": "0.0", "origQty": "2.0",
		 "executedQty": "2.0", "cummulativeQuoteQty": "3100.0", "status": "FILLED",
		 "timeInForce": "GTC", "type": "MARKET", "side": "SELL", "time": 1507725186595}
	]`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	results, err := client.GetAllOrders(context.Background(), "ETHUSDT")
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, http.MethodGet, recorded[0].method)
	assert.Equal(t, "/api/v3/allOrders", recorded[0].path)

	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].OrderID)
	assert.Equal(t, int64(2), results[1].OrderID)
	assert.Equal(t, "SELL", results[1].Side)
	assert.Equal(t, time.UnixMilli(1507725186595), results[1].Timestamp)
}
