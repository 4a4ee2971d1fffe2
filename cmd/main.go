package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fitmarket/internal/bootstrap"
	"fitmarket/internal/config"
	"fitmarket/internal/fulfillment"
	"fitmarket/internal/handler"
	"fitmarket/internal/middleware"
	"fitmarket/internal/outbox"
	"fitmarket/internal/payment"
	"fitmarket/internal/repository"
	"fitmarket/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config (fails fast when the gateway key is missing) ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// --- Repositories ---
	orderRepo := repository.NewOrderRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	gymRepo := repository.NewGymRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// --- Payment gateway client ---
	gateway := payment.NewGateway(&cfg.Payment)

	// --- Fulfillment ---
	fulfiller := fulfillment.New(&fulfillment.Stores{
		Orders:        orderRepo,
		Transactions:  txnRepo,
		Notifications: notifRepo,
		Gyms:          gymRepo,
		Outbox:        outboxRepo,
	}, cfg.Payment.SuccessURL, logger)

	// --- Webhook Deduper (Redis with in-memory fallback) ---
	invoiceDeduper, dedupeErr := middleware.NewInvoiceDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Outbox dispatcher ---
	dispatcher := outbox.New(&outbox.Stores{
		Events:        outboxRepo,
		Transactions:  txnRepo,
		Notifications: notifRepo,
		Gyms:          gymRepo,
	}, logger)
	dispatcher.Start()

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	paymentHandler := handler.NewPaymentHandler(gateway, gateway, fulfiller, &cfg.Payment, logger)
	router.Setup(e, paymentHandler, invoiceDeduper)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting fitmarket payment server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop outbox dispatcher
	ctx := dispatcher.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
