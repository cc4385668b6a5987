package cmd

import (
	"context"
	"fmt"
	"time"

	"casino/config"
	"casino/database"
	"casino/domain/interfaces"
	"casino/domain/rng"
	"casino/domain/services"
	"casino/events"
	"casino/infrastructure"
	"casino/infrastructure/observability"
	"casino/repository"
	"casino/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// storage bundles the repositories for the configured backend
type storage struct {
	users   interfaces.UserRepository
	history interfaces.BalanceHistoryRepository
	health  func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		log.Warn("Using in-memory storage, balances are lost on restart")
		repo := repository.NewMemoryUserRepository(cfg.HistoryWindow)
		return &storage{
			users:   repo,
			history: repo,
			health:  func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	default:
		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		txManager, err := db.NewTxManager()
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Database connection established successfully")
		return &storage{
			users:   repository.NewUserRepository(db, txManager, cfg.HistoryWindow),
			history: repository.NewBalanceHistoryRepository(db),
			health:  db.Ping,
			close:   db.Close,
		}, nil
	}
}

// connectEvents returns a publisher forwarding events to JetStream in publish
// order, or nil values when publishing is disabled.
func connectEvents(ctx context.Context, cfg *config.Config) (*infrastructure.NATSClient, *infrastructure.OrderedPublisher, error) {
	if !cfg.EventsEnabled() {
		log.Info("NATS_SERVERS not set, domain events stay in process")
		return nil, nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := infrastructure.NewNATSClient(cfg.NATSServers, "casino")
	if err := client.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	forwarder := infrastructure.NewOrderedPublisher(infrastructure.NewNATSEventPublisher(client, mapper), 1024)
	return client, forwarder, nil
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
	}).Info("Starting casino service...")

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	eventBus := events.NewBus()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewCollector(registry)
	metrics.Subscribe(eventBus)

	natsClient, forwarder, err := connectEvents(ctx, cfg)
	if err != nil {
		return err
	}

	// The bus fans out to metrics asynchronously; NATS gets its own ordered queue
	var publisher interfaces.EventPublisher = eventBus
	if forwarder != nil {
		publisher = infrastructure.NewFanoutPublisher(eventBus, forwarder)
	}

	opts := services.DefaultLedgerOptions()
	opts.MaxRetries = cfg.LedgerMaxRetries
	opts.PersistenceTimeout = cfg.PersistenceTimeout
	ledger := services.NewWagerLedger(store.users, infrastructure.NewTransactionalPublisherFactory(publisher), metrics, opts)

	src := rng.New()
	accountService := services.NewAccountService(ledger, store.users, store.history, publisher)
	blackjackService := services.NewBlackjackService(ledger, src)
	rouletteService := services.NewRouletteService(ledger, src)
	log.Info("Services initialized successfully")

	limiter := server.NewRateLimiter(server.PerMinute(cfg.RateLimitPerMinute))
	defer limiter.Stop()

	router := server.NewRouter(&server.RouterDeps{
		Accounts:           accountService,
		Blackjack:          blackjackService,
		Roulette:           rouletteService,
		Authenticator:      server.NewAuthenticator(cfg.JWTSecret),
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            observability.Handler(registry),
		HealthCheck:        store.health,
	})

	srv := server.New(cfg.HTTPAddr, router)
	serveErr, err := srv.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	log.Info("Shutting down casino service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	eventBus.Wait()
	// Drain queued events before the broker goes away
	if forwarder != nil {
		forwarder.Close()
	}
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	log.Info("Shutdown completed")
	return nil
}
