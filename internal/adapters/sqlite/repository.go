package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoTradeClient/internal/domain"
	"cryptoTradeClient/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.KlineRepository interface using SQLite.
// Fetched kline series are cached here so long backfills do not have to be
// re-downloaded from the exchange.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/klines.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, but the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Kline database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		close_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, open_time)
	);
	CREATE INDEX IF NOT EXISTS idx_klines_symbol_interval_open_time ON klines (symbol, interval, open_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// SaveKlines stores the given klines in a single transaction, replacing any
// existing rows with the same (symbol, interval, open time) key so re-fetched
// pages stay idempotent.
func (r *Repository) SaveKlines(ctx context.Context, klines []*domain.Kline) error {
	if len(klines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	for _, k := range klines {
		if _, err := stmt.ExecContext(ctx,
			k.Symbol, string(k.Interval), k.OpenTime.UnixMilli(), k.CloseTime.UnixMilli(),
			k.Open, k.High, k.Low, k.Close, k.Volume,
		); err != nil {
			return fmt.Errorf("failed to insert kline at %s: %w: %w", k.OpenTime, ports.ErrUpdateFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit klines: %w: %w", ports.ErrUpdateFailed, err)
	}

	r.logger.Debug(ctx, "Saved klines", map[string]interface{}{"count": len(klines)})
	return nil
}

// FindKlines returns stored klines for the symbol/interval whose open time
// falls within [from, to], ascending by open time.
func (r *Repository) FindKlines(ctx context.Context, symbol string, interval domain.Interval, from, to time.Time) ([]*domain.Kline, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, interval, open_time, close_time, open, high, low, close, volume
		FROM klines
		WHERE symbol = ? AND interval = ? AND open_time BETWEEN ? AND ?
		ORDER BY open_time ASC`,
		symbol, string(interval), from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query klines: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var klines []*domain.Kline
	for rows.Next() {
		var (
			k               domain.Kline
			intervalStr     string
			openMs, closeMs int64
		)
		if err := rows.Scan(&k.Symbol, &intervalStr, &openMs, &closeMs, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan kline row: %w: %w", ports.ErrQueryFailed, err)
		}
		k.Interval = domain.Interval(intervalStr)
		k.OpenTime = time.UnixMilli(openMs)
		k.CloseTime = time.UnixMilli(closeMs)
		klines = append(klines, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kline rows: %w: %w", ports.ErrQueryFailed, err)
	}

	return klines, nil
}

// CountKlines returns the number of stored klines for the symbol/interval.
func (r *Repository) CountKlines(ctx context.Context, symbol string, interval domain.Interval) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM klines WHERE symbol = ? AND interval = ?`,
		symbol, string(interval)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count klines: %w: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
