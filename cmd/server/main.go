package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/example/drt-dispatch/internal/config"
	"github.com/example/drt-dispatch/internal/fleet"
	httpapi "github.com/example/drt-dispatch/internal/http"
	"github.com/example/drt-dispatch/internal/ingest"
	"github.com/example/drt-dispatch/internal/logging"
	"github.com/example/drt-dispatch/internal/payments"
	"github.com/example/drt-dispatch/internal/pricing"
	"github.com/example/drt-dispatch/internal/storage"
	"github.com/example/drt-dispatch/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	logger := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PGDSN != "" && cfg.RunMigrations {
		if err := runMigrations(cfg.PGDSN); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	rates := pricing.DefaultTable()
	if cfg.RatesPath != "" {
		rates, err = pricing.LoadTable(cfg.RatesPath)
		if err != nil {
			logger.Error("rate table load failed", "path", cfg.RatesPath, "error", err)
			os.Exit(1)
		}
		logger.Info("rate table loaded", "path", cfg.RatesPath)
	}

	var provider fleet.Provider
	var pool *fleet.Pool
	if cfg.RedisAddr != "" {
		provider = fleet.NewRedisFleet(cfg.RedisAddr, cfg.RedisPassword, cfg.FleetGeoKey)
		logger.Info("fleet backed by redis", "addr", cfg.RedisAddr, "key", cfg.FleetGeoKey)
	} else {
		pool = fleet.NewPool(fleet.SeedVehicles())
		provider = pool
		logger.Info("fleet backed by in-memory pool", "vehicles", len(fleet.SeedVehicles()))
	}

	var bookings storage.BookingStore
	var ledger wallet.Ledger
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		bookings = ps
		pl, err := wallet.NewPostgresLedger(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres ledger connect failed", "error", err)
			os.Exit(1)
		}
		ledger = pl
	} else {
		bookings = storage.NewMemoryStore()
		ledger = wallet.NewMemoryLedger()
	}

	var producer *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}

	var processor httpapi.PaymentProcessor
	if os.Getenv("STRIPE_API_KEY") != "" {
		processor = payments.NewStripeClient()
	}

	srv := httpapi.NewServer(cfg, logger, httpapi.Deps{
		Fleet:     provider,
		Rates:     rates,
		Bookings:  bookings,
		Ledger:    ledger,
		Payments:  processor,
		Kafka:     producer,
		Locations: fleet.SeedLocations(),
	})
	srv.StartBroadcasters(ctx)

	if cfg.Simulate && pool != nil {
		sim := fleet.NewSimulator(pool, cfg.SimulateInterval, logger)
		go sim.Run(ctx)
		logger.Info("fleet simulator running", "interval", cfg.SimulateInterval)
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("drt-dispatch listening", "addr", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	b, err := os.ReadFile(filepath.Join("migrations", "001_create_schema.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}
