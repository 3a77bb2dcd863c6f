package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/tair/orderflow/internal/checkout"
	"github.com/tair/orderflow/internal/checkout/client"
	checkoutHTTP "github.com/tair/orderflow/internal/checkout/delivery/http"
	checkoutdomain "github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/internal/order"
	orderHTTP "github.com/tair/orderflow/internal/order/delivery/http"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	"github.com/tair/orderflow/internal/stock"
	stockHTTP "github.com/tair/orderflow/internal/stock/delivery/http"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/internal/user"
	userHTTP "github.com/tair/orderflow/internal/user/delivery/http"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/kafka"
	"github.com/tair/orderflow/pkg/database"
	"github.com/tair/orderflow/pkg/logger"
	"github.com/tair/orderflow/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "commerce-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting commerce service")

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize tracing, continuing without it")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "commercedb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&userdomain.User{},
		&stockdomain.StockItem{},
		&stockdomain.StockMovement{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Redis is optional; the catalog client degrades to uncached lookups
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unreachable, catalog cache disabled")
			redisClient = nil
		}
	}

	// Kafka is optional; order events are skipped when no brokers are configured
	var events checkoutdomain.EventPublisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err := kafka.NewPublisher([]string{brokers})
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unreachable, order events disabled")
		} else {
			defer publisher.Close()
			events = publisher
			logger.Logger.Info().Str("brokers", brokers).Msg("Kafka publisher initialized")
		}
	}

	// Upstream gateways
	catalogClient := client.NewCatalogClient(getEnv("CATALOG_SERVICE_URL", "http://localhost:8083"), redisClient)
	paymentClient := client.NewPaymentClient(
		getEnv("PAYMENT_SERVICE_URL", "http://localhost:8084"),
		getEnv("PAYMENT_API_KEY", ""),
	)

	// Initialize handlers with Wire DI
	userHandler, err := user.InitializeHTTPHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize user handler")
	}

	userRepo := user.ProvideUserRepository(db)

	stockHandler, err := stock.InitializeHTTPHandler(db, userRepo)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize stock handler")
	}

	orderHandler, err := order.InitializeHTTPHandler(db, userRepo)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize order handler")
	}

	checkoutHandler, err := checkout.InitializeHTTPHandler(db, catalogClient, paymentClient, events)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize checkout handler")
	}

	// Start abandoned-order sweeper
	sweepInterval := getDurationEnv("SWEEP_INTERVAL", 10*time.Minute)
	abandonThreshold := getDurationEnv("ABANDON_THRESHOLD", 5*time.Minute)
	sw := checkout.NewSweeper(db, events, sweepInterval, abandonThreshold, nil)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sw.Start(sweeperCtx)

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8080")
	go startHTTPServer(userHandler, stockHandler, orderHandler, checkoutHandler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(
	userHandler *userHTTP.UserHandler,
	stockHandler *stockHTTP.StockHandler,
	orderHandler *orderHTTP.OrderHandler,
	checkoutHandler *checkoutHTTP.CheckoutHandler,
	db *sql.DB,
	port string,
) {
	// Setup router
	router := mux.NewRouter()

	// Register routes
	userHandler.RegisterRoutes(router)
	stockHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	checkoutHandler.RegisterRoutes(router)

	// Health check endpoint
	stockHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
