package cmd

import (
	"context"
	"fmt"
	"time"

	"stackpot/application"
	"stackpot/config"
	"stackpot/database"
	"stackpot/domain/interfaces"
	"stackpot/domain/services"
	"stackpot/infrastructure"
	"stackpot/infrastructure/beacon"
	"stackpot/infrastructure/chain"
	"stackpot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the pot
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)
	log.Info("Starting stackpot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()
	log.Info("Database connection established successfully")

	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down metrics")
		}
	}()

	// Initialize NATS and the event publisher
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	var eventPublisher interfaces.EventPublisher
	if err := natsClient.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, domain events will not be published")
		eventPublisher = infrastructure.NewNoopEventPublisher()
		natsClient = nil
	} else {
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS client")
			}
		}()
		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper()).
			WithMetrics(metrics)
		if err := natsPublisher.EnsurePotEventStream(natsClient); err != nil {
			return fmt.Errorf("failed to ensure pot event stream: %w", err)
		}
		eventPublisher = natsPublisher
	}

	// Initialize entropy beacon
	vrfBeacon, err := beacon.NewVRFBeacon(cfg.VRFPrivateKey, cfg.EntropyCacheSize, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize entropy beacon: %w", err)
	}

	// Initialize the pot
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	pot := services.NewPotService(cfg.PoolConfig(), uowFactory, vrfBeacon, metrics)
	if err := pot.Load(ctx); err != nil {
		return fmt.Errorf("failed to load pool: %w", err)
	}
	info := pot.GetPoolInfo()
	log.WithFields(log.Fields{
		"height":          pot.Height(),
		"totalPool":       info.TotalPool.Dec(),
		"participants":    info.ActiveParticipants,
		"blocksUntilDraw": pot.BlocksUntilNextDraw(),
	}).Info("Pool loaded")

	// Subscribe to staking reward reports and depositor commands
	if natsClient != nil {
		rewardsHandler, err := application.NewRewardsHandler(pot)
		if err != nil {
			return fmt.Errorf("failed to create rewards handler: %w", err)
		}
		if err := natsClient.EnsureRewardsStream(cfg.RewardsSubject); err != nil {
			return fmt.Errorf("failed to ensure rewards stream: %w", err)
		}
		if err := natsClient.EnsureCommandsStream(cfg.CommandsSubject); err != nil {
			return fmt.Errorf("failed to ensure commands stream: %w", err)
		}
		rewardsListener := infrastructure.NewRewardsListener(rewardsHandler, metrics)
		commandListener := infrastructure.NewCommandListener(application.NewCommandHandler(pot), metrics)

		consumer := infrastructure.NewMessageConsumer(natsClient)
		consumer.RegisterHandler(cfg.RewardsSubject, rewardsListener.HandleRewardReport)
		consumer.RegisterHandler(cfg.CommandsSubject, commandListener.HandlePotCommand)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start message consumer: %w", err)
		}
	}

	// Start the chain clock and draw keeper
	after := pot.Height()
	if cfg.StartHeight > after {
		after = cfg.StartHeight
	}
	blocks := chain.NewLocalChain(cfg.BlockInterval, after)
	stopKeeper, keeperDone := application.NewDrawKeeperWorker(pot, blocks).Start(ctx)

	log.WithFields(log.Fields{
		"environment":   cfg.Environment,
		"blocksPerDraw": cfg.BlocksPerDraw,
		"blockInterval": cfg.BlockInterval,
	}).Info("Stackpot is running")
	<-ctx.Done()

	log.Info("Shutting down stackpot...")
	stopKeeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-keeperDone:
		log.Info("Shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	}

	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
