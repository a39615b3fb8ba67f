// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"subscription-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient owns the connection pool for the franchise routing table.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection. The connection is not verified here;
// callers ping inside their own retry loop.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB exposes the pool for components that take *sql.DB directly.
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
