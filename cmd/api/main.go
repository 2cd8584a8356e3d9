package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cabezayunke/sagas-playground/internal/api"
	"github.com/cabezayunke/sagas-playground/internal/app"
	"github.com/cabezayunke/sagas-playground/internal/config"
	"github.com/cabezayunke/sagas-playground/internal/dlq"
	"github.com/cabezayunke/sagas-playground/internal/eventbus"
	"github.com/cabezayunke/sagas-playground/internal/inventory"
	"github.com/cabezayunke/sagas-playground/internal/notify"
	"github.com/cabezayunke/sagas-playground/internal/order"
	"github.com/cabezayunke/sagas-playground/internal/resilience"
	"github.com/cabezayunke/sagas-playground/internal/saga"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := app.NewFactory(cfg)
	defer infraFactory.Close()

	// Redis backs the idempotency middleware and the read cache; the
	// API still works without it.
	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		slog.Warn("redis unavailable, idempotency and caching disabled", "error", err)
		redisClient = nil
	}

	bus := eventbus.NewInMemoryBus()
	inventorySvc := inventory.NewService(cfg.Inventory.Stock)
	orders := order.NewService(bus, order.NewRateInjector(cfg.Chaos.FailureRate))
	updater := resilience.NewStatusUpdater(orders, cfg.Breaker, cfg.Retry)
	notifier := notify.NewWebhook(cfg.Notifier.WebhookURL)

	queue, err := dlq.New(ctx, cfg, infraFactory)
	if err != nil {
		slog.Error("failed to build DLQ backend", "backend", cfg.DLQ.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("DLQ backend ready", "backend", cfg.DLQ.Backend)

	saga.Register(bus,
		saga.NewReservationHandler(inventorySvc, bus),
		saga.NewOrderUpdateHandler(updater, queue),
		saga.NewFinishedHandler(notifier),
	)

	reprocessor := dlq.NewReprocessor(queue, bus, notifier, cfg.Reprocessor.Interval)
	go func() {
		if err := reprocessor.Run(ctx); err != nil {
			slog.Error("DLQ reprocessor stopped", "error", err)
		}
	}()

	handlers := api.NewHandlers(orders, redisClient)
	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers, redisClient),
	}

	go func() {
		slog.Info("server starting", "port", cfg.HTTP.Port, "app", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
