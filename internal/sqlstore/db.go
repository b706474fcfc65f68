// Package sqlstore implementa tpcc.Repository sobre database/sql com o driver lib/pq.
// It serves both standalone transactions and DTM XA branches.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/matheusmosca/tpcc-bench/internal/config"
)

const (
	driverName      = "postgres"
	connectAttempts = 30
)

// Open abre o pool database/sql e espera o banco ficar disponível
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(min(cfg.MaxConns, 5))
	db.SetConnMaxLifetime(time.Hour)

	// Testar conectividade
	for i := 0; i < connectAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			log.Printf("✅ Connected to %s (database/sql, lib/pq)", cfg.Name)
			return db, nil
		}
		log.Printf("⏳ Waiting for database... (%d/%d)", i+1, connectAttempts)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts", connectAttempts)
}
