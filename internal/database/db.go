// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool. When nil, game archiving is
// disabled; the engine never depends on it.
var DB *pgxpool.Pool

// Connect opens the pool from a postgres DSN and verifies it.
func Connect(ctx context.Context, dsn string) error {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	DB, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := DB.Ping(pingCtx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	return nil
}
