package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"leadscout/internal/pkg/config"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// PoolConfig holds the connection pool tuning knobs. The defaults suit a
// single worker process scraping on a schedule; a sweep holds at most
// MaxConcurrentJobs connections at once.
type PoolConfig struct {
	// MaxOpenConns caps concurrent connections to Postgres.
	// Env: DB_MAX_OPEN_CONNS (default: 25)
	MaxOpenConns int

	// MaxIdleConns caps pooled idle connections.
	// Env: DB_MAX_IDLE_CONNS (default: 10)
	MaxIdleConns int

	// ConnMaxLifetime recycles connections older than this.
	// Env: DB_CONN_MAX_LIFETIME (default: 1h)
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime closes connections idle longer than this.
	// Env: DB_CONN_MAX_IDLE_TIME (default: 30m)
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns the default pool tuning.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// loadPoolConfig reads the pool tuning from the environment. Malformed
// values keep the default; a bad tuning knob should not stop the worker.
func loadPoolConfig() PoolConfig {
	cfg := DefaultPoolConfig()

	positive := func(v int) error {
		return config.ValidateIntRange(v, 1, 1000)
	}
	cfg.MaxOpenConns = config.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, positive).Value.(int)
	cfg.MaxIdleConns = config.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, positive).Value.(int)
	cfg.ConnMaxLifetime = config.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime,
		config.ValidatePositiveDuration).Value.(time.Duration)
	cfg.ConnMaxIdleTime = config.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime,
		config.ValidatePositiveDuration).Value.(time.Duration)

	return cfg
}

// Open connects to the database named by DATABASE_URL, applies the pool
// tuning from the environment, and verifies connectivity with a bounded
// ping.
func Open() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("Open: DATABASE_URL not set")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	cfg := loadPoolConfig()
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("Open: ping: %w", err)
	}

	slog.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
	return pool, nil
}
