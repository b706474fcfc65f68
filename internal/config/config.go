// Package config carrega a configuração do serviço a partir de variáveis de ambiente.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

const (
	DriverPgx = "pgx"
	DriverPq  = "pq"
)

// Database descreve a conexão com o PostgreSQL que hospeda as tabelas bmsql_*
type Database struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

// URL returns a postgres:// connection string accepted by pgx and lib/pq.
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Config agrega todas as opções do tpccd
type Config struct {
	Port        string
	ServiceName string
	Database    Database

	TxTimeout       time.Duration
	MaxOrderLines   int
	RestockQuantity int
	CustomerDataMax int

	OTLPEndpoint string
	OTelEnabled  bool

	DTMServer string

	RabbitMQURL    string
	EventsExchange string
}

// Load lê a configuração do ambiente, aplicando os defaults locais
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "tpccd"),
		Database: Database{
			Driver:   getEnv("DATABASE_DRIVER", DriverPgx),
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnvInt("DATABASE_PORT", 5432),
			User:     getEnv("DATABASE_USER", "postgres"),
			Password: getEnv("DATABASE_PASSWORD", "postgres"),
			Name:     getEnv("DATABASE_NAME", "tpcc"),
			MaxConns: getEnvInt("DATABASE_MAX_CONNS", 25),
		},
		TxTimeout:       getEnvDuration("TX_TIMEOUT", tpcc.DefaultTxTimeout),
		MaxOrderLines:   getEnvInt("TPCC_MAX_ORDER_LINES", tpcc.DefaultMaxOrderLines),
		RestockQuantity: getEnvInt("TPCC_RESTOCK_QUANTITY", tpcc.DefaultRestockQuantity),
		CustomerDataMax: getEnvInt("TPCC_CUSTOMER_DATA_MAX", tpcc.DefaultCustomerDataMax),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTelEnabled:     getEnvBool("OTEL_ENABLED", true),
		DTMServer:       getEnv("DTM_SERVER", "http://localhost:36789/api/dtmsvr"),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		EventsExchange:  getEnv("EVENTS_EXCHANGE", "tpcc.events"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPgx, DriverPq:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q: expected %q or %q", c.Database.Driver, DriverPgx, DriverPq)
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("invalid DATABASE_MAX_CONNS %d", c.Database.MaxConns)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("invalid TX_TIMEOUT %s", c.TxTimeout)
	}
	if c.MaxOrderLines <= 0 {
		return fmt.Errorf("invalid TPCC_MAX_ORDER_LINES %d", c.MaxOrderLines)
	}
	if c.CustomerDataMax < 0 {
		return fmt.Errorf("invalid TPCC_CUSTOMER_DATA_MAX %d", c.CustomerDataMax)
	}
	return nil
}

// TpccOptions converte a configuração nas opções do tpcc.Service
func (c *Config) TpccOptions() tpcc.Options {
	return tpcc.Options{
		MaxOrderLines:   c.MaxOrderLines,
		RestockQuantity: c.RestockQuantity,
		CustomerDataMax: c.CustomerDataMax,
		TxTimeout:       c.TxTimeout,
	}
}

// getEnv retorna o valor da variável de ambiente ou um valor padrão
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
