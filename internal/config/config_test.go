package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_DRIVER", "DATABASE_PORT", "TX_TIMEOUT",
		"TPCC_MAX_ORDER_LINES", "TPCC_CUSTOMER_DATA_MAX", "RABBITMQ_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPgx, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.Equal(t, 15, cfg.MaxOrderLines)
	assert.Equal(t, 91, cfg.RestockQuantity)
	assert.Equal(t, 500, cfg.CustomerDataMax)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "pq")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("TX_TIMEOUT", "250ms")
	t.Setenv("TPCC_CUSTOMER_DATA_MAX", "0")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DriverPq, cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TxTimeout)
	assert.Equal(t, 0, cfg.CustomerDataMax)
	assert.False(t, cfg.OTelEnabled)

	opts := cfg.TpccOptions()
	assert.Equal(t, 250*time.Millisecond, opts.TxTimeout)
	assert.Equal(t, 0, opts.CustomerDataMax)
}

func TestLoad_InvalidNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("TPCC_MAX_ORDER_LINES", "many")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 15, cfg.MaxOrderLines)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestDatabaseURL(t *testing.T) {
	db := Database{Host: "db", Port: 5432, User: "bench", Password: "p@ss", Name: "tpcc"}

	assert.Equal(t, "postgres://bench:p%40ss@db:5432/tpcc?sslmode=disable", db.URL())
}
