// Package db opens the PostgreSQL connection pool and applies the schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// The site is low-traffic, so the pool is deliberately small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	}
}

// ConnectionConfigFromEnv reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME, keeping defaults for unset
// or non-positive values.
func ConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	if v := config.GetEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns); v > 0 {
		cfg.MaxOpenConns = v
	}
	if v := config.GetEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns); v > 0 {
		cfg.MaxIdleConns = v
	}
	if v := config.GetEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime); v > 0 {
		cfg.ConnMaxLifetime = v
	}
	if v := config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime); v > 0 {
		cfg.ConnMaxIdleTime = v
	}
	return cfg
}

// Open creates the pgx-backed pool for DATABASE_URL and verifies it with a ping.
func Open(ctx context.Context) (*sql.DB, error) {
	dsn := config.GetEnvString("DATABASE_URL", "")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := ConnectionConfigFromEnv()
	Configure(db, cfg)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Configure applies pool settings to db.
func Configure(db *sql.DB, cfg ConnectionConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}
