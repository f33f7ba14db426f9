package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sampahku/internal/app"
	"sampahku/internal/config"
	"sampahku/internal/logging"
	"sampahku/internal/services"
	"sampahku/internal/tasks"
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

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := services.InitDB(cfg.DatabaseURL, logger, !cfg.IsProduction())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	queue := tasks.NewGormTaskStore(db)
	registry := tasks.NewRegistry()
	tasks.DefineTasks(registry, &tasks.LogInfoTaskDef{Logger: logger}, NewReminderTask(cfg, a, queue, logger))

	logger.Info("Worker started", zap.Strings("tasks", registry.Names()))
	tasks.NewRunner(queue, registry, logger).Run(ctx, 5*time.Minute)
	logger.Info("Shutting down worker")
}

// NewReminderTask builds the reminder task with WhatsApp and email delivery when configured
func NewReminderTask(cfg *config.Config, a *app.App, queue tasks.TaskStore, logger *zap.Logger) *tasks.SendPaymentRemindersTaskDef {
	def := &tasks.SendPaymentRemindersTaskDef{
		Payments:      a.Payments,
		Notifications: a.Notifications,
		Accounts:      a.Repos.Accounts,
		Queue:         queue,
		Logger:        logger,
	}
	if cfg.Waha.APIKey != "" {
		def.Messenger = services.NewWahaService(cfg.Waha)
	} else {
		logger.Warn("WAHA_API_KEY not set, WhatsApp reminders disabled")
	}
	if mailer := services.NewEmailService(cfg.SMTP); mailer.Configured() {
		def.Mailer = mailer
	} else {
		logger.Warn("SMTP not configured, RT digests disabled")
	}
	return def
}
