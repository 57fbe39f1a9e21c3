package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/config"
	"roomhub-commerce-api/internal/events"
	"roomhub-commerce-api/internal/handler"
	"roomhub-commerce-api/internal/logger"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/internal/router"
	"roomhub-commerce-api/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log := logger.New(cfg.App.LogLevel)
	log.WithField("environment", cfg.App.Environment).Info("starting roomhub commerce api")

	// Initialize relational store based on config
	var (
		store *repository.Store
		err   error
	)
	switch cfg.Store.Type {
	case "mysql":
		store, err = repository.NewMySQLStore(cfg.Database.MySQLDSN())
	case "postgres", "postgresql":
		store, err = repository.NewPostgresStore(cfg.Database.PostgresDSN())
	default: // sqlite
		store, err = repository.NewSQLiteStore(cfg.Store.Path)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer store.Close()
	log.WithField("driver", store.Driver()).Info("store initialized")

	repos := repository.NewRepositories(store)

	// Initialize Redis client (optional)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress(),
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis connection failed, continuing without it")
		redisClient = nil
	} else {
		log.Info("redis client initialized")
	}
	cancel()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Product cache: Redis when configured and reachable, in-memory otherwise
	var productCache cache.Cache
	if cfg.Cache.Type == "redis" && redisClient != nil {
		productCache = cache.NewRedisCache(redisClient)
		log.Info("redis product cache initialized")
	} else {
		productCache = cache.NewMemoryCache()
		log.Info("in-memory product cache initialized")
	}
	defer productCache.Close()

	// Stock event stream: Kafka when brokers are configured
	var stockEvents events.StockPublisher = events.NopStockPublisher{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafkaPub := events.NewKafkaStockPublisher(cfg.Events.KafkaBrokers, cfg.Events.StockTopic, cfg.Events.BufferSize, log)
		defer kafkaPub.Close()
		stockEvents = kafkaPub
		log.WithField("topic", cfg.Events.StockTopic).Info("kafka stock publisher initialized")
	}

	// Notifications: Redis pub/sub when Redis is available
	var notifier events.Notifier = events.NopNotifier{}
	if redisClient != nil {
		notifier = events.NewRedisNotifier(redisClient, cfg.Events.NotifyChannel)
		log.WithField("channel", cfg.Events.NotifyChannel).Info("redis notifier initialized")
	}

	// Initialize services
	stockEngine := service.NewStockEngine(repos.Products)
	cartService := service.NewCartService(repos, stockEngine, stockEvents, notifier, productCache, log)
	orderService := service.NewOrderService(repos, stockEngine, stockEvents, notifier, productCache, log)
	ledgerService := service.NewLedgerService(repos, cfg.Economy.DailyLoginReward, cfg.Economy.RegistrationReward, log)
	quotaService := service.NewRoomQuotaService(repos, ledgerService, cfg.Economy, log)
	catalogService := service.NewCatalogService(repos, productCache, cfg.Cache.TTL, log)

	// Initialize handlers
	healthHandler := handler.New(store, cfg.App.Version)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService)
	roomHandler := handler.NewRoomHandler(quotaService)
	walletHandler := handler.NewWalletHandler(ledgerService)
	productHandler := handler.NewProductHandler(catalogService)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		RoomHandler:    roomHandler,
		WalletHandler:  walletHandler,
		ProductHandler: productHandler,
		Logger:         log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.WithField("address", cfg.Server.Address()).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}

	log.Info("server stopped")
}
