package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"time"

	"cryptoTradeClient/config"
	"cryptoTradeClient/internal/adapters/binanceclient"
	"cryptoTradeClient/internal/adapters/logger"
	"cryptoTradeClient/internal/adapters/sqlite"
	"cryptoTradeClient/internal/utils"
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

	// 4. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize kline repository")
		log.Fatalf("FATAL: Failed to initialize kline repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing kline repository")
		}
	}()

	ctx := context.Background()

	appLogger.Info(ctx, "Fetching klines", map[string]interface{}{
		"symbol": cfg.Symbol, "interval": cfg.Interval, "limit": cfg.KlineLimit,
	})
	klines, err := client.GetKlines(ctx, cfg.Symbol, cfg.Interval, cfg.KlineLimit, time.Time{})
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(klines)})

	if err := repo.SaveKlines(ctx, klines); err != nil {
		appLogger.Error(ctx, err, "Error saving klines to database")
		log.Fatalf("Error saving klines: %v", err)
	}

	if err := os.MkdirAll("data", 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	filename := fmt.Sprintf("data/%s_%s_%s.csv", cfg.Symbol, cfg.Interval, time.Now().Format("20060102"))
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved klines", map[string]interface{}{"filename": filename, "count": len(klines)})
}
