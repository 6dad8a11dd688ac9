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

	"github.com/fjod/go_shop/internal/cart/cache"
	"github.com/fjod/go_shop/internal/cart/repository"
	"github.com/fjod/go_shop/internal/cart/store"
	"github.com/fjod/go_shop/internal/checkout/gateway"
	"github.com/fjod/go_shop/internal/checkout/service"
	h "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/publisher"
)

type Config struct {
	HTTPPort        string
	SQLitePath      string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	PostgresCreds   *orders.Credentials
	ValidationURL   string
	RedirectDelay   time.Duration
	CompletionDelay time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		SQLitePath:  getEnv("SQLITE_PATH", "carts.db"),
		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB", "shop"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		KafkaBrokers: brokers,
		KafkaTopic:   getEnv("KAFKA_TOPIC", "shop-events"),

		PostgresCreds: &orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "orders"),
			MigrationsDirPath: getEnv("POSTGRES_MIGRATIONS", "migrations/postgres"),
		},

		ValidationURL:   getEnv("PAYMENT_VALIDATION_URL", "http://localhost:9090"),
		RedirectDelay:   getEnvDuration("REDIRECT_DELAY", 2*time.Second),
		CompletionDelay: getEnvDuration("COMPLETION_DELAY", 3*time.Second),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart persistence: mongo when configured, embedded sqlite otherwise.
	var adapter repository.Adapter
	if cfg.MongoURI != "" {
		mongoAdapter, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		if err := mongoAdapter.CreateIndexes(ctx); err != nil {
			log.Fatalf("failed to create mongodb indexes: %v", err)
		}
		adapter = mongoAdapter
		log.Printf("cart persistence: mongodb (%s)", cfg.MongoDBName)
	} else {
		sqliteAdapter, err := repository.NewSQLiteAdapter(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
		if err := sqliteAdapter.RunMigrations(getEnv("SQLITE_MIGRATIONS", "migrations/sqlite")); err != nil {
			log.Fatalf("failed to run sqlite migrations: %v", err)
		}
		adapter = sqliteAdapter
		log.Printf("cart persistence: sqlite (%s)", cfg.SQLitePath)
	}

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		cartCache = cache.NewRedisCache(redisClient)
		log.Printf("cart cache: redis (%s)", cfg.RedisAddr)
	}

	var notifier publisher.Notifier = publisher.NoopNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := publisher.NewKafkaNotifier(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		log.Printf("event publisher: kafka (%s)", cfg.KafkaTopic)
	}

	orderRepo, err := orders.NewPostgresRepository(cfg.PostgresCreds)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(cfg.PostgresCreds); err != nil {
		log.Fatalf("failed to run postgres migrations: %v", err)
	}

	carts := store.NewManager(adapter, cartCache, notifier)
	defer func() {
		if err := carts.Close(); err != nil {
			log.Printf("failed to close cart manager: %v", err)
		}
	}()

	client := gateway.NewClient(cfg.ValidationURL, cfg.RequestTimeout)
	dispatcher := gateway.NewDispatcher(client, cfg.RedirectDelay)

	registry := service.NewRegistry(carts, dispatcher, orderRepo, notifier, cfg.CompletionDelay)
	defer registry.Close()

	cartHandler := h.NewCartHandler(carts)
	checkoutHandler := h.NewCheckoutHandler(registry)
	router := h.NewRouter(cartHandler, checkoutHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
