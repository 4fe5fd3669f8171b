package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// SQLite Configuration (in-memory store when disabled)
	SQLitePath string
	UseSQLite  bool
	// Redis Configuration (optional - forecast cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int  // Cache TTL in seconds
	UseCache      bool // Whether to use cache (Redis) or not
	// Kafka Configuration (optional - domain events and usage reports)
	KafkaBrokers     []string
	KafkaTopicStock  string
	KafkaTopicAlerts string
	KafkaTopicUsage  string
	KafkaGroupID     string
	KafkaClientID    string
	KafkaAcks        string
	KafkaRetries     int
	UseKafka         bool
	// Consumer retry Configuration
	MaxRetries      int
	RetryDelayMs    int
	DeadLetterQueue bool
	DLQTopic        string
	// Forecast Configuration
	ForecastHorizonDays int
	RiskWorkers         int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Parse Kafka brokers (comma-separated)
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		SQLitePath:  getEnv("SQLITE_PATH", "./inventory.db"),
		UseSQLite:   getEnvAsBool("USE_SQLITE", true),
		// Redis Configuration (optional)
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 300),
		UseCache:      getEnvAsBool("USE_CACHE", false),
		// Kafka Configuration (optional)
		KafkaBrokers:     kafkaBrokers,
		KafkaTopicStock:  getEnv("KAFKA_TOPIC_STOCK", "inventory.stock"),
		KafkaTopicAlerts: getEnv("KAFKA_TOPIC_ALERTS", "inventory.alerts"),
		KafkaTopicUsage:  getEnv("KAFKA_TOPIC_USAGE", "inventory.usage"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "forecast-service"),
		KafkaClientID:    getEnv("KAFKA_CLIENT_ID", "forecast-service"),
		KafkaAcks:        getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:     getEnvAsInt("KAFKA_RETRIES", 3),
		UseKafka:         getEnvAsBool("USE_KAFKA", false),
		// Retry Configuration
		MaxRetries:      getEnvAsInt("MAX_RETRIES", 3),
		RetryDelayMs:    getEnvAsInt("RETRY_DELAY_MS", 1000),
		DeadLetterQueue: getEnvAsBool("DEAD_LETTER_QUEUE", true),
		DLQTopic:        getEnv("DLQ_TOPIC", "inventory.dlq"),
		// Forecast Configuration
		ForecastHorizonDays: getEnvAsInt("FORECAST_HORIZON_DAYS", 730),
		RiskWorkers:         getEnvAsInt("RISK_WORKERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}
