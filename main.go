package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokocart/internal/cache"
	"tokocart/internal/config"
	"tokocart/internal/database"
	"tokocart/internal/handlers"
	"tokocart/internal/repositories"
	"tokocart/internal/server"
	"tokocart/internal/services"
	"tokocart/pkg/logger"
	"tokocart/pkg/rabbitmq"
	"tokocart/pkg/storeguard"

	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, using the built-in development secret")
	}

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("database ready", "driver", cfg.DatabaseDriver)

	// --- Repositories ---
	guard := func(name string) *storeguard.Guard {
		gc := storeguard.DefaultConfig(name)
		gc.MaxTries = cfg.StoreRetryMaxTries
		gc.InitialInterval = cfg.StoreRetryInitialInterval
		gc.MaxInterval = cfg.StoreRetryMaxInterval
		return repositories.NewStoreGuard(gc, log)
	}
	productRepo := repositories.NewGuardedProductRepository(repositories.NewGORMProductRepository(db), guard("products"))
	orderRepo := repositories.NewGuardedOrderRepository(repositories.NewGORMOrderRepository(db), guard("orders"))
	userRepo := repositories.NewGuardedUserRepository(repositories.NewGORMUserRepository(db), guard("users"))

	cartStore, closeCarts, err := openCartStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeCarts()
	cartRepo := repositories.NewGuardedCartRepository(cartStore, guard("carts"))

	// --- Cart cache ---
	var cartCache cache.CartCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, cart cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer client.Close()
			cartCache = cache.NewRedisCache(client)
			log.Info("cart cache enabled", "addr", cfg.RedisAddr)
		}
	}

	// --- Events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, order events disabled", "error", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeOrderEvents(orderEventLogger(log)); err != nil {
				log.Warn("failed to start order event consumer", "error", err)
			}
		}
	}

	// --- Services ---
	productService := services.NewProductService(productRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	cartService := services.NewCartService(cartRepo, productRepo, cartCache, log)
	checkoutService := services.NewCheckoutService(cartService, productRepo, orderRepo, publisher, log)
	orderService := services.NewOrderService(orderRepo, publisher, log)

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, authService, userRepo, productService, log); err != nil {
			log.Error("failed to seed demo data", "error", err)
		}
	}

	// --- HTTP ---
	app := server.NewApp(server.Deps{
		Tokens:    authService,
		Auth:      handlers.NewAuthHandler(authService, log),
		Products:  handlers.NewProductHandler(productService, log),
		Cart:      handlers.NewCartHandler(cartService, log),
		Orders:    handlers.NewOrderHandler(checkoutService, orderService, log),
		Log:       log,
		AccessLog: true,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.AppPort)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

// openCartStore returns the configured cart backend and a function that releases it.
func openCartStore(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger) (repositories.CartRepository, func(), error) {
	switch cfg.CartStore {
	case config.CartStoreMongo:
		mdb, err := repositories.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewMongoCartRepository(mdb)
		if err := repo.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create cart indexes", "error", err)
		}
		log.Info("cart store: mongodb", "database", cfg.MongoDB)
		return repo, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mdb.Client().Disconnect(disconnectCtx); err != nil {
				log.Warn("failed to disconnect from MongoDB", "error", err)
			}
		}, nil
	case config.CartStoreMemory:
		log.Info("cart store: memory")
		return repositories.NewMemoryCartRepository(), func() {}, nil
	default:
		log.Info("cart store: sql")
		return repositories.NewGORMCartRepository(db), func() {}, nil
	}
}

// orderEventLogger handles messages from the order queue by logging them.
func orderEventLogger(log *logger.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.Info("received order event", "routing_key", msg.RoutingKey, "delivery_tag", msg.DeliveryTag, "body", string(msg.Body))
		return nil
	}
}
