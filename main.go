package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"time"

	"cryptoTradeClient/config"
	"cryptoTradeClient/internal/adapters/binanceclient"
	"cryptoTradeClient/internal/adapters/logger"
	"cryptoTradeClient/internal/domain"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		RecvWindow: cfg.RecvWindow,
		Timeout:    cfg.Timeout,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize exchange client")
		log.Fatalf("FATAL: Failed to initialize exchange client: %v", err)
	}
	appLogger.Info(context.Background(), "Exchange client initialized")

	ctx := context.Background()

	// 4. Discover tradable symbols for the configured quote assets.
	symbols := client.ListTradingSymbols(ctx, cfg.QuoteAssets)
	appLogger.Info(ctx, "Discovered trading symbols", map[string]interface{}{
		"count": len(symbols), "quoteAssets": cfg.QuoteAssets,
	})

	// 5. Fetch recent candles for the configured symbol.
	klines, err := client.GetKlines(ctx, cfg.Symbol, cfg.Interval, cfg.KlineLimit, time.Time{})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to fetch klines")
		log.Fatalf("FATAL: Failed to fetch klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{
		"symbol": cfg.Symbol, "interval": cfg.Interval, "count": len(klines),
	})

	if len(klines) == 0 {
		appLogger.Warn(ctx, "No kline data available, skipping order check")
		return
	}
	last := klines[len(klines)-1]

	// 6. Verify order wiring with a validation-only submission. The exchange
	// checks the request but never executes it.
	result, err := client.PlaceOrder(ctx, domain.OrderRequest{
		Symbol:   cfg.Symbol,
		Side:     domain.Buy,
		Type:     domain.OrderTypeLimit,
		Quantity: 100,
		Price:    last.Close,
		Test:     true,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Test order was rejected")
		return
	}
	appLogger.Info(ctx, "Test order accepted", map[string]interface{}{
		"symbol": cfg.Symbol, "price": last.Close, "status": result.Status,
	})
}
