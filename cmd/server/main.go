package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"sampahku/internal/app"
	"sampahku/internal/config"
	"sampahku/internal/handlers"
	"sampahku/internal/logging"
	appMiddleware "sampahku/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = appMiddleware.ErrorHandler(logger)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(appMiddleware.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("6M"))

	handlers.Register(e, a.Sessions, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(a.Accounts, a.Citizens, a.Sessions, cfg.IsProduction()),
		Citizens:      handlers.NewCitizenHandler(a.Citizens),
		Payments:      handlers.NewPaymentHandler(a.Payments, a.Citizens),
		Disputes:      handlers.NewDisputeHandler(a.Disputes, a.Citizens),
		Accounts:      handlers.NewAccountHandler(a.Accounts),
		Notifications: handlers.NewNotificationHandler(a.Notifications),
		Recap:         handlers.NewRecapHandler(a.Recaps),
	})

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
