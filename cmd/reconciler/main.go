package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tair/farm-management/internal/inventory/repository"
	productrepository "github.com/tair/farm-management/internal/product/repository"
	"github.com/tair/farm-management/internal/reconciler"
	salerepository "github.com/tair/farm-management/internal/sale/repository"
	"github.com/tair/farm-management/kafka"
	"github.com/tair/farm-management/pkg/database"
	"github.com/tair/farm-management/pkg/logger"
	"github.com/tair/farm-management/pkg/tracing"
)

// The reconciler consumes the change events emitted by the production and
// sales services and keeps the inventory ledger and sale profits consistent.
// It runs detached from the request path: by the time an event is handled,
// the triggering call has already returned.
func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "reconciler")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting reconciler")

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		if err := tracing.Shutdown(context.Background(), tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
		}
	}()

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "farmdb"),
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

	// Repositories
	inventoryRepo := repository.NewGormInventoryRepositoryWithTracing(db)
	productRepo := productrepository.NewGormProductRepository(db)
	saleRepo := salerepository.NewGormSaleRepository(db)

	// Reconciliation triggers
	harvestReconciler := reconciler.NewHarvestReconciler(inventoryRepo, productRepo)
	saleReconciler := reconciler.NewSaleReconciler(saleRepo, inventoryRepo, productRepo)

	// Kafka consumer
	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	groupID := getEnv("KAFKA_GROUP_ID", "farm-reconciler")
	topics := []string{kafka.TopicProductionItemUpdated, kafka.TopicSaleCreated}

	consumer, err := kafka.NewConsumer(kafkaBrokers, groupID, topics)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeProductionItemUpdated, harvestReconciler.HandleMessage)
	consumer.RegisterHandler(kafka.EventTypeSaleCreated, saleReconciler.HandleMessage)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down reconciler...")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
