// Package postgres implementa tpcc.Repository sobre pgx/pgxpool.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/tpcc-bench/internal/config"
)

const connectAttempts = 30

// Open cria o pool de conexões e espera o banco ficar disponível
func Open(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(min(cfg.MaxConns, 5))
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < connectAttempts; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Printf("✅ Connected to %s with connection pool (max=%d)", cfg.Name, cfg.MaxConns)
			return pool, nil
		}
		log.Printf("⏳ Waiting for database... (%d/%d)", i+1, connectAttempts)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts", connectAttempts)
}
