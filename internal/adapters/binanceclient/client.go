package binanceclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cryptoTradeClient/internal/domain"
	"cryptoTradeClient/internal/ports"
)

const (
	defaultRecvWindow = 5000 * time.Millisecond
	defaultTimeout    = 10 * time.Second

	// maxKlinesPerRequest is the largest number of rows the klines endpoint
	// returns in a single call. Larger limits are satisfied by paging.
	maxKlinesPerRequest = 1000
)

// Client implements the ports.ExchangeClient interface by talking to the
// exchange's REST API directly.
type Client struct {
	transport  *transport
	endpoints  endpoints
	baseURL    string
	secretKey  string
	recvWindow int64 // milliseconds
	logger     ports.Logger
}

// Config holds configuration specific to the exchange client adapter.
// Credentials are injected here once; the client holds them immutably and
// never exposes or logs them.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string        // Overrides the testnet/production URL when set
	RecvWindow time.Duration // Signed-request staleness tolerance (e.g. 5s)
	Timeout    time.Duration // HTTP timeout (e.g. 10s)
	Logger     ports.Logger
}

// New creates a new exchange client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for exchange client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.UseTestnet {
			baseURL = baseURLTestnet
		} else {
			baseURL = baseURLProduction
		}
	}
	cfg.Logger.Info(context.Background(), "Exchange client configured", map[string]interface{}{"baseURL": baseURL, "testnet": cfg.UseTestnet})

	recvWindow := cfg.RecvWindow
	if recvWindow <= 0 {
		recvWindow = defaultRecvWindow
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		transport: &transport{
			httpClient: &http.Client{Timeout: timeout},
			apiKey:     cfg.APIKey,
		},
		endpoints:  defaultEndpoints(),
		baseURL:    baseURL,
		secretKey:  cfg.SecretKey,
		recvWindow: recvWindow.Milliseconds(),
		logger:     cfg.Logger,
	}, nil
}

// handleError translates exchange API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch {
		case errors.Is(err, ports.ErrMalformedResponse): // Parse fault, same sentinel code as a transport failure
			mappedErr = ports.ErrMalformedResponse
		case apiErr.Code == transportFailureCode:
			mappedErr = ports.ErrConnectionFailed
		case apiErr.Code == -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case apiErr.Code == -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case apiErr.Code == -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case apiErr.Code <= -1100 && apiErr.Code > -1200: // Parameter/request format errors
			mappedErr = ports.ErrInvalidRequest
		case apiErr.Code == -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case apiErr.Code == -2011: // Cancel order rejected
			mappedErr = ports.ErrOrderCancelFailed
		case apiErr.Code == -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case apiErr.Code == -2014 || apiErr.Code == -2015: // API key invalid or lacking permissions
			mappedErr = ports.ErrInvalidAPIKeys
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// signParams appends the receive window and a freshly captured millisecond
// timestamp, then signs the parameters. Stale timestamps are rejected by the
// exchange outside the receive-window tolerance, so the timestamp is taken at
// call time, never reused.
func (c *Client) signParams(p *params) error {
	if c.transport.apiKey == "" || c.secretKey == "" {
		return fmt.Errorf("API credentials are required for signed calls: %w", ports.ErrConfigurationError)
	}
	p.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	p.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	p.Sign(c.secretKey)
	return nil
}

// ListTradingSymbols fetches exchange metadata and returns the symbols in
// TRADING status whose quote asset is in quoteAssets (empty slice = no quote
// filter), preserving the exchange's ordering. A metadata failure is logged
// and reported as an empty result: callers treat "no symbols this round" as
// routine and retry on their next invocation.
func (c *Client) ListTradingSymbols(ctx context.Context, quoteAssets []string) []domain.Symbol {
	op := "ListTradingSymbols"

	body, err := c.transport.get(ctx, c.baseURL+c.endpoints.exchangeInfo, nil, false)
	if err != nil {
		c.logger.Warn(ctx, op+": exchange metadata unavailable, reporting no symbols", map[string]interface{}{"error": err.Error()})
		return nil
	}

	var info exchangeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.Warn(ctx, op+": failed to parse exchange metadata, reporting no symbols", map[string]interface{}{"error": err.Error()})
		return nil
	}

	quoteSet := make(map[string]struct{}, len(quoteAssets))
	for _, asset := range quoteAssets {
		quoteSet[asset] = struct{}{}
	}

	symbols := make([]domain.Symbol, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if !domain.SymbolStatus(s.Status).IsTradable() {
			continue
		}
		if len(quoteSet) > 0 {
			if _, ok := quoteSet[s.QuoteAsset]; !ok {
				continue
			}
		}
		symbols = append(symbols, domain.Symbol{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			Status:     domain.SymbolStatus(s.Status),
		})
	}

	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"count": len(symbols)})
	return symbols
}

// GetKlines retrieves up to limit klines ending at endTime (or at the present
// moment when endTime is zero). Limits above the single-call maximum page
// backward in time: the most recent remainder-sized page is fetched first,
// then full pages anchored just before the oldest open time seen so far are
// prepended until the limit is satisfied. The merged series is ascending by
// open time with boundary duplicates removed. A failure on any page fails the
// whole call - a silently truncated series would corrupt anything computed
// over it.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval domain.Interval, limit int, endTime time.Time) ([]*domain.Kline, error) {
	op := "GetKlines"

	if !interval.IsValid() {
		return nil, fmt.Errorf("%s failed: %w: unsupported interval %q", op, ports.ErrInvalidRequest, interval)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%s failed: %w: limit must be positive, got %d", op, ports.ErrInvalidRequest, limit)
	}

	var endMs int64
	if !endTime.IsZero() {
		endMs = endTime.UnixMilli()
	}

	remainder := limit % maxKlinesPerRequest
	if remainder == 0 {
		remainder = maxKlinesPerRequest
	}
	fullPages := (limit - remainder) / maxKlinesPerRequest

	series, err := c.fetchKlinesPage(ctx, symbol, interval, remainder, endMs)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	for page := 0; page < fullPages && len(series) > 0; page++ {
		anchor := series[0].OpenTime.UnixMilli() - 1
		older, err := c.fetchKlinesPage(ctx, symbol, interval, maxKlinesPerRequest, anchor)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(older) == 0 {
			// Exchange history exhausted before the limit was reached.
			break
		}
		series = mergePages(older, series)
	}

	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "interval": interval, "count": len(series)})
	return series, nil
}

// fetchKlinesPage fetches a single page of at most maxKlinesPerRequest rows.
// An endMs of zero means "now".
func (c *Client) fetchKlinesPage(ctx context.Context, symbol string, interval domain.Interval, limit int, endMs int64) ([]*domain.Kline, error) {
	p := &params{}
	p.Set("symbol", symbol)
	p.Set("interval", string(interval))
	p.Set("limit", strconv.Itoa(limit))
	if endMs > 0 {
		p.Set("endTime", strconv.FormatInt(endMs, 10))
	}

	body, err := c.transport.get(ctx, c.baseURL+c.endpoints.klines, p, false)
	if err != nil {
		return nil, err
	}

	var rows []klineRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, malformedError(fmt.Errorf("failed to parse klines response: %w", err))
	}

	klines := make([]*domain.Kline, 0, len(rows))
	for _, row := range rows {
		k, err := translateKline(row, symbol, interval)
		if err != nil {
			return nil, malformedError(err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// mergePages prepends an older page to the newer series, dropping older rows
// whose open time is not strictly before the newer series' first row.
// Adjacent page queries can legitimately overlap on their boundary candle, so
// deduplication here is unconditional.
func mergePages(older, newer []*domain.Kline) []*domain.Kline {
	if len(newer) == 0 {
		return older
	}
	cut := newer[0].OpenTime
	keep := len(older)
	for keep > 0 && !older[keep-1].OpenTime.Before(cut) {
		keep--
	}
	return append(older[:keep], newer...)
}

// PlaceOrder submits an order. The test/live split is a first-class safety
// switch: req.Test routes to the validation-only endpoint and the two paths
// must never resolve to the same URL.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*ports.OrderResult, error) {
	op := "PlaceOrder"

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrInvalidRequest, err)
	}

	p := &params{}
	p.Set("symbol", req.Symbol)
	p.Set("side", string(req.Side))
	p.Set("type", string(req.Type))
	p.Set("quoteOrderQty", FloatToString(req.Quantity))
	if req.Type.RequiresPrice() {
		p.Set("timeInForce", string(domain.TimeInForceGTC))
		p.Set("price", FloatToString(req.Price))
	}
	if err := c.signParams(p); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	url := c.baseURL + c.endpoints.order
	if req.Test {
		url = c.baseURL + c.endpoints.testOrder
	}

	body, err := c.transport.post(ctx, url, p, true)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	result, err := translateOrderResponse(body)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol": req.Symbol, "side": req.Side, "type": req.Type, "test": req.Test, "orderID": result.OrderID, "status": result.Status,
	})
	return result, nil
}

// CancelOrder cancels an open order by its exchange-assigned ID.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (*ports.OrderResult, error) {
	op := "CancelOrder"

	p := c.orderQueryParams(symbol, orderID)
	if err := c.signParams(p); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	body, err := c.transport.delete(ctx, c.baseURL+c.endpoints.order, p, true)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	result, err := translateOrderResponse(body)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "orderID": orderID, "status": result.Status})
	return result, nil
}

// GetOrder retrieves the current state of a single order.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (*ports.OrderResult, error) {
	op := "GetOrder"

	p := c.orderQueryParams(symbol, orderID)
	if err := c.signParams(p); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	body, err := c.transport.get(ctx, c.baseURL+c.endpoints.order, p, true)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	result, err := translateOrderResponse(body)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	return result, nil
}

// GetAllOrders retrieves every order the account has on the symbol.
func (c *Client) GetAllOrders(ctx context.Context, symbol string) ([]*ports.OrderResult, error) {
	op := "GetAllOrders"

	p := &params{}
	p.Set("symbol", symbol)
	if err := c.signParams(p); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	body, err := c.transport.get(ctx, c.baseURL+c.endpoints.allOrders, p, true)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	var responses []orderResponse
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, c.handleError(ctx, malformedError(fmt.Errorf("failed to parse orders response: %w", err)), op)
	}

	results := make([]*ports.OrderResult, 0, len(responses))
	for _, resp := range responses {
		result, err := translateOrder(resp)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) orderQueryParams(symbol string, orderID int64) *params {
	p := &params{}
	p.Set("symbol", symbol)
	p.Set("orderId", strconv.FormatInt(orderID, 10))
	return p
}

// --- Translation Helpers ---

func translateOrderResponse(body []byte) (*ports.OrderResult, error) {
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformedError(fmt.Errorf("failed to parse order response: %w", err))
	}
	return translateOrder(resp)
}

func translateOrder(resp orderResponse) (*ports.OrderResult, error) {
	price, err := parseAmount(resp.Price, "price")
	if err != nil {
		return nil, err
	}
	origQty, err := parseAmount(resp.OrigQty, "origQty")
	if err != nil {
		return nil, err
	}
	execQty, err := parseAmount(resp.ExecutedQty, "executedQty")
	if err != nil {
		return nil, err
	}
	quoteQty, err := parseAmount(resp.CummulativeQuoteQty, "cummulativeQuoteQty")
	if err != nil {
		return nil, err
	}

	clientOrderID := resp.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = resp.OrigClientOrderID
	}

	ts := resp.TransactTime
	if ts == 0 {
		ts = resp.UpdateTime
	}
	if ts == 0 {
		ts = resp.Time
	}
	var timestamp time.Time
	if ts > 0 {
		timestamp = time.UnixMilli(ts)
	}

	return &ports.OrderResult{
		OrderID:       resp.OrderID,
		Symbol:        resp.Symbol,
		ClientOrderID: clientOrderID,
		Price:         price,
		OrigQuantity:  origQty,
		ExecutedQty:   execQty,
		QuoteQty:      quoteQty,
		Status:        resp.Status,
		TimeInForce:   resp.TimeInForce,
		Type:          resp.Type,
		Side:          resp.Side,
		Timestamp:     timestamp,
	}, nil
}

// parseAmount parses a numeric string field, treating absence as zero.
// Validation-only order submissions return an empty body, so every field may
// legitimately be missing.
func parseAmount(s, name string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformedError(fmt.Errorf("could not parse %s '%s': %w", name, s, err))
	}
	return v, nil
}

func translateKline(row klineRow, symbol string, interval domain.Interval) (*domain.Kline, error) {
	open, err := strconv.ParseFloat(row.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", row.Open, err)
	}
	high, err := strconv.ParseFloat(row.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", row.High, err)
	}
	low, err := strconv.ParseFloat(row.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", row.Low, err)
	}
	cls, err := strconv.ParseFloat(row.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", row.Close, err)
	}
	vol, err := strconv.ParseFloat(row.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", row.Volume, err)
	}

	return &domain.Kline{
		OpenTime:  time.UnixMilli(row.OpenTime),
		CloseTime: time.UnixMilli(row.CloseTime),
		Symbol:    symbol,
		Interval:  interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
