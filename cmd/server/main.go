package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	shophttp "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/publisher"
	"github.com/fjod/go_shop/internal/service"
)

type Config struct {
	HTTPPort          string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	SQLitePath        string
	CatalogMigrations string

	// Optional backends. Empty values fall back to in-memory stores.
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	OrdersMigrations string
	MongoURI         string
	MongoDBName      string
	RedisAddr        string
	KafkaBrokers     []string
}

func loadConfig() *Config {
	port, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid POSTGRES_PORT: %v", err)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		SQLitePath:        getEnv("SQLITE_PATH", "shop.db"),
		CatalogMigrations: getEnv("CATALOG_MIGRATIONS", "internal/catalog/migrations"),
		PostgresHost:      os.Getenv("POSTGRES_HOST"),
		PostgresPort:      port,
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:        getEnv("POSTGRES_DB", "shopdb"),
		OrdersMigrations:  getEnv("ORDERS_MIGRATIONS", "internal/orders/migrations"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "shopdb"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      brokers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Catalog store
	catalogRepo, err := catalog.NewRepository(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrations); err != nil {
		log.Fatalf("failed to run catalog migrations: %v", err)
	}
	log.Printf("catalog database ready at %s", cfg.SQLitePath)

	// Order store
	var orderRepo orders.OrderRepository
	var outboxStore orders.OutboxStore
	if cfg.PostgresHost != "" {
		cred := &orders.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.OrdersMigrations,
		}
		pg, err := orders.NewRepository(cred)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := pg.RunMigrations(cred); err != nil {
			log.Fatalf("failed to run order migrations: %v", err)
		}
		log.Printf("connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)
		orderRepo = pg
		outboxStore = pg
	} else {
		log.Println("POSTGRES_HOST not set, using in-memory order store")
		mem := orders.NewMemoryStore()
		orderRepo = mem
		outboxStore = mem
	}
	defer orderRepo.Close()

	// Cart snapshot store
	var cartStore cart.Store
	if cfg.MongoURI != "" {
		mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		cartStore = cart.NewMongoStore(mongoDB)
		log.Printf("connected to MongoDB at %s", cfg.MongoURI)
	}
	registry := cart.NewRegistry(cartStore)

	// Cart read cache
	var cartCache cart.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cartCache = cart.NewBreakerCache(cart.NewRedisCache(client))
		log.Printf("cart cache on redis at %s", cfg.RedisAddr)
	}

	productService := service.NewProductService(catalogRepo, registry)
	orderService := service.NewOrderService(productService, orderRepo, registry, cartCache)

	// Outbox publisher
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(outboxStore, cfg.KafkaBrokers...)
		go poller.Run(pollerCtx)
		log.Printf("outbox poller publishing to %v", cfg.KafkaBrokers)
	}

	router := shophttp.NewRouter(productService, orderService, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "go_shop"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("shop server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
