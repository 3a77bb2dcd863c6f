package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tair/orderflow/kafka"
	"github.com/tair/orderflow/pkg/logger"
	"github.com/tair/orderflow/pkg/tracing"
)

// The notifier tails order lifecycle events and emits customer
// notifications. Delivery is log-only for now; the handler seam is where
// an email or push provider would plug in.
func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "order-notifier")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting order notifier")

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

	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	topics := []string{
		kafka.TopicOrderCreated,
		kafka.TopicOrderConfirmed,
		kafka.TopicOrderCancelled,
	}

	consumer, err := kafka.NewConsumer(brokers, getEnv("KAFKA_GROUP_ID", "order-notifier"), topics)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeOrderCreated, notifyOrderCreated)
	consumer.RegisterHandler(kafka.EventTypeOrderConfirmed, notifyOrderConfirmed)
	consumer.RegisterHandler(kafka.EventTypeOrderCancelled, notifyOrderCancelled)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down order notifier...")
}

func notifyOrderCreated(ctx context.Context, event kafka.OrderEvent) error {
	logger.Info(ctx).
		Str("order_public_id", event.OrderPublicID).
		Uint("user_id", event.UserID).
		Float64("total_amount", event.TotalAmount).
		Int("lines", len(event.Lines)).
		Msg("Notify: order received, awaiting payment")
	return nil
}

func notifyOrderConfirmed(ctx context.Context, event kafka.OrderEvent) error {
	logger.Info(ctx).
		Str("order_public_id", event.OrderPublicID).
		Uint("user_id", event.UserID).
		Msg("Notify: payment received, order confirmed")
	return nil
}

func notifyOrderCancelled(ctx context.Context, event kafka.OrderEvent) error {
	logger.Info(ctx).
		Str("order_public_id", event.OrderPublicID).
		Uint("user_id", event.UserID).
		Str("payment_status", event.PaymentStatus).
		Msg("Notify: order cancelled")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
