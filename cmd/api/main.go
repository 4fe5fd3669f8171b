package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-forecast-service/internal/alerts"
	"stock-forecast-service/internal/cache"
	"stock-forecast-service/internal/config"
	"stock-forecast-service/internal/events"
	"stock-forecast-service/internal/forecast"
	"stock-forecast-service/internal/handlers"
	"stock-forecast-service/internal/kafka"
	"stock-forecast-service/internal/repository"
	"stock-forecast-service/internal/services"
	"stock-forecast-service/pkg/logger"
	"stock-forecast-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "stock-forecast-service/docs" // Import docs for Swagger
)

// @title           Stock Forecast Service API
// @version         1.0
// @description     Stock tracking with usage-based depletion forecasting, risk ranking and threshold alerts

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https
func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Stock Forecast Service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	// Initialize repository
	var repo repository.StockRepository
	if cfg.UseSQLite {
		appLogger.Info("🔧 Initializing SQLite repository...", zap.String("path", cfg.SQLitePath))
		sqliteRepo, err := repository.NewSQLiteStockRepository(cfg.SQLitePath, appLogger)
		if err != nil {
			appLogger.Fatal("❌ Failed to initialize SQLite repository", zap.Error(err))
		}
		repo = sqliteRepo
		appLogger.Info("✅ SQLite repository initialized successfully")
	} else {
		appLogger.Warn("⚠️ Using in-memory repository, data is lost on restart")
		repo = repository.NewInMemoryStockRepository()
	}

	// Initialize cache (optional)
	var cacheClient cache.Cache
	if cfg.UseCache {
		appLogger.Info("🔧 Initializing forecast cache...")
		cacheClient = cache.NewCache(cfg, appLogger)
	}

	// Initialize event publisher
	var publisher events.EventPublisher
	if cfg.UseKafka {
		appLogger.Info("📡 Kafka Configuration",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_stock", cfg.KafkaTopicStock),
			zap.String("topic_alerts", cfg.KafkaTopicAlerts),
			zap.String("topic_usage", cfg.KafkaTopicUsage),
			zap.String("client_id", cfg.KafkaClientID),
			zap.String("acks", cfg.KafkaAcks),
			zap.Int("retries", cfg.KafkaRetries),
		)
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("❌ Failed to initialize Kafka publisher", zap.Error(err))
		}
		publisher = kafkaPublisher
	} else {
		publisher = events.NewInMemoryEventPublisher(appLogger)
	}

	// Initialize services
	forecaster := forecast.NewForecaster(cfg.ForecastHorizonDays)
	ranker := forecast.NewRiskRanker(forecaster, cfg.RiskWorkers)
	alertService := alerts.NewService(repo, publisher, appLogger)
	stockService := services.NewStockService(
		repo,
		forecaster,
		ranker,
		alertService,
		publisher,
		cacheClient,
		cache.TTL(cfg.CacheTTL),
		appLogger,
	)

	// Initialize usage report consumer (optional)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var consumer *kafka.Consumer
	var dlqProducer *kafka.DeadLetterProducer
	if cfg.UseKafka {
		var dlq kafka.DeadLetterSender
		if cfg.DeadLetterQueue {
			p, err := kafka.NewDeadLetterProducer(cfg, appLogger)
			if err != nil {
				appLogger.Warn("⚠️ DLQ producer unavailable, failed usage reports will be dropped", zap.Error(err))
			} else {
				dlqProducer = p
				dlq = p
			}
		}

		processor := kafka.NewEventProcessor(stockService, appLogger)
		c, err := kafka.NewConsumer(cfg, processor, dlq, appLogger)
		if err != nil {
			appLogger.Fatal("❌ Failed to initialize Kafka consumer", zap.Error(err))
		}
		consumer = c

		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				appLogger.Error("Kafka consumer stopped", zap.Error(err))
			}
		}()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())

	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))
	router.Use(logger.GinMiddleware(appLogger))

	// Error handler renders errors the inner middleware and handlers attach
	router.Use(middleware.ErrorHandler(appLogger))

	// Idempotency middleware (for write operations)
	requestIDStore := middleware.NewInMemoryRequestIDStore()
	router.Use(middleware.IdempotencyMiddleware(requestIDStore, appLogger, 5*time.Minute))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	stockHandler := handlers.NewStockHandler(appLogger, stockService)
	stockHandler.RegisterRoutes(router.Group("/api/v1"))
	appLogger.Info("✅ Handlers initialized successfully")

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting stock forecast service",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	stopConsumer()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			appLogger.Error("Failed to close Kafka consumer", zap.Error(err))
		}
	}
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			appLogger.Error("Failed to close DLQ producer", zap.Error(err))
		}
	}
	if err := publisher.Close(); err != nil {
		appLogger.Error("Failed to close event publisher", zap.Error(err))
	}
	if closer, ok := cacheClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			appLogger.Error("Failed to close cache", zap.Error(err))
		}
	}
	requestIDStore.Close()
	if err := repo.Close(); err != nil {
		appLogger.Error("Failed to close repository", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
