package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheusmosca/tpcc-bench/internal/bench"
	"github.com/matheusmosca/tpcc-bench/internal/config"
	"github.com/matheusmosca/tpcc-bench/internal/postgres"
	"github.com/matheusmosca/tpcc-bench/internal/telemetry"
	"github.com/matheusmosca/tpcc-bench/internal/workload"
	"github.com/matheusmosca/tpcc-bench/internal/xa"
)

func main() {
	defaults := workload.DefaultScale()
	var (
		mode          = flag.String("mode", "http", "load | http | xa")
		target        = flag.String("target", "http://localhost:8080", "tpccd base URL")
		workers       = flag.Int("workers", 8, "concurrent workers")
		duration      = flag.Duration("duration", 30*time.Second, "run duration")
		newOrderRatio = flag.Float64("neword-ratio", 0.51, "share of New-Order among New-Order and Payment")
		seed          = flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
		warehouses    = flag.Int("warehouses", defaults.Warehouses, "warehouses")
		districts     = flag.Int("districts", defaults.DistrictsPerWarehouse, "districts per warehouse")
		customers     = flag.Int("customers", defaults.CustomersPerDistrict, "customers per district")
		items         = flag.Int("items", defaults.Items, "items")
		timeout       = flag.Duration("timeout", 15*time.Second, "per-request timeout (http mode)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	scale := workload.Scale{
		Warehouses:            *warehouses,
		DistrictsPerWarehouse: *districts,
		CustomersPerDistrict:  *customers,
		Items:                 *items,
	}

	if *mode == "load" {
		pool, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer pool.Close()

		if err := postgres.Load(ctx, pool, scale, *seed); err != nil {
			log.Fatalf("Failed to load database: %v", err)
		}
		return
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, "tpccload", cfg.OTLPEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	var driver bench.Driver
	switch *mode {
	case "http":
		driver = bench.NewHTTPDriver(*target, *timeout)
	case "xa":
		driver = bench.NewXADriver(xa.NewClient(cfg.DTMServer, *target))
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	mix := workload.DefaultMix()
	mix.MaxLines = min(mix.MaxLines, cfg.MaxOrderLines)
	mix.MinLines = min(mix.MinLines, mix.MaxLines)

	report := bench.NewRunner(driver, bench.Config{
		Workers:       *workers,
		Duration:      *duration,
		NewOrderRatio: *newOrderRatio,
		Seed:          *seed,
		Scale:         scale,
		Mix:           mix,
	}).Run(ctx)

	fmt.Fprint(os.Stdout, report.String())
}
