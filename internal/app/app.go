// Package app wires configuration into the stores and services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sampahku/internal/config"
	"sampahku/internal/repository"
	"sampahku/internal/services"
	"sampahku/internal/store"
)

// App holds the domain services and the connections they use
type App struct {
	Store    store.DocumentStore
	Repos    *repository.Repositories
	Cache    *services.RedisCache
	Events   services.EventPublisher
	Sessions *services.SessionManager

	Citizens      *services.CitizenService
	Payments      *services.PaymentService
	Disputes      *services.DisputeService
	Accounts      *services.AccountService
	Notifications *services.NotificationService
	Recaps        *services.RecapService

	closers []func() error
	logger  *zap.Logger
}

// OpenStore connects the document store selected by STORE_DRIVER
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		client, err := services.InitFirestore(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		logger.Info("Using Firestore document store")
		return store.NewFirestoreStore(client), nil
	case config.StoreMongo:
		s, err := store.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("Using MongoDB document store", zap.String("database", cfg.MongoDatabase))
		return s, nil
	case config.StoreMemory:
		logger.Warn("Using in-memory document store; data is lost on exit")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// New builds every domain service. Redis, RabbitMQ and MinIO are optional:
// when unconfigured or unreachable the services run without them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	docs, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Store:    docs,
		Repos:    repository.New(docs),
		Events:   services.NoopPublisher,
		Sessions: services.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL),
		logger:   logger,
	}
	a.closers = append(a.closers, docs.Close)

	deps := services.Deps{Repos: a.Repos, Logger: logger}

	if cfg.RedisURL != "" {
		cache, err := services.NewRedisCache(cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, recap caching disabled", zap.Error(err))
		} else {
			a.Cache = cache
			deps.Cache = cache
			a.closers = append(a.closers, cache.Close)
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := services.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			a.Events = pub
			a.closers = append(a.closers, pub.Close)
		}
	}
	deps.Events = a.Events

	var proofs services.ProofStore
	if cfg.Minio.Endpoint != "" {
		storage, err := services.NewProofStorage(ctx, services.ProofStorageConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
			PublicURL: cfg.Minio.PublicURL,
		}, logger)
		if err != nil {
			logger.Warn("MinIO unavailable, proof uploads disabled", zap.Error(err))
		} else {
			proofs = storage
		}
	}

	a.Citizens = services.NewCitizenService(deps)
	a.Payments = services.NewPaymentService(deps, proofs)
	a.Disputes = services.NewDisputeService(deps, cfg.StrictDisputeTransitions)
	a.Accounts = services.NewAccountService(deps, services.NewBcryptHasher())
	a.Notifications = services.NewNotificationService(deps)
	a.Recaps = services.NewRecapService(deps)
	return a, nil
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error during shutdown", zap.Error(err))
		}
	}
}
