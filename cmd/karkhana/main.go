package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"karkhana/internal/amqp"
	"karkhana/internal/config"
	karkhanahttp "karkhana/internal/http"
	"karkhana/internal/log"
	"karkhana/internal/services"
	"karkhana/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.DirtyPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The server works without messaging; drift repair falls
			// back to the worker's periodic sweep.
			logger.Warn("AMQP unavailable, continuing without wallet-dirty messages", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	ledger := services.NewLedgerService(repo, publisher)
	server := karkhanahttp.NewServer(karkhanahttp.Options{
		Addr:              ":" + cfg.Port,
		DashboardCacheTTL: cfg.DashboardCacheTTL,
	}, repo, ledger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server failed", log.FieldError, err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
