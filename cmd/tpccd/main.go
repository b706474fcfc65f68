package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/matheusmosca/tpcc-bench/internal/config"
	"github.com/matheusmosca/tpcc-bench/internal/events"
	"github.com/matheusmosca/tpcc-bench/internal/httpapi"
	"github.com/matheusmosca/tpcc-bench/internal/postgres"
	"github.com/matheusmosca/tpcc-bench/internal/sqlstore"
	"github.com/matheusmosca/tpcc-bench/internal/telemetry"
	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/xa"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	checks := map[string]httpapi.HealthCheck{}

	// Initialize repository for the configured driver
	var repository tpcc.Repository
	switch cfg.Database.Driver {
	case config.DriverPq:
		db, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		repository = sqlstore.NewRepository(db)
		checks["database"] = db.PingContext
	default:
		pool, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer pool.Close()
		repository = postgres.NewRepository(pool)
		checks["database"] = pool.Ping
	}

	var publisher tpcc.Publisher
	if cfg.RabbitMQURL != "" {
		broker, err := events.Dial(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer broker.Close()
		publisher = broker
		checks["rabbitmq"] = func(context.Context) error { return broker.Ping() }
	}

	service := tpcc.NewService(repository, cfg.TpccOptions(), publisher)
	handler := httpapi.NewHandler(service, otel.Tracer(cfg.ServiceName), cfg.ServiceName, checks)
	participant := xa.NewParticipant(service, xa.DBConf(cfg.Database))

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(cfg.ServiceName))
	handler.Register(r)

	// XA endpoints (2PC)
	r.POST("/api/xa/neword", participant.HandleNewOrder())
	r.POST("/api/xa/payment", participant.HandlePayment())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("🚀 %s listening on port %s (driver=%s, tx_timeout=%s)", cfg.ServiceName, cfg.Port, cfg.Database.Driver, cfg.TxTimeout)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("↩️ %s stopped", cfg.ServiceName)
}
