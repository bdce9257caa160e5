package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig addresses one MySQL database.
type DBConfig struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the go-sql-driver/mysql data source name.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Config holds all application configuration
type Config struct {
	// Server
	Environment string
	Port        string
	LogLevel    string
	RateLimit   float64
	RateBurst   int

	// MySQL
	Primary     DBConfig
	OrderShards []DBConfig

	// Redis
	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	// Kafka
	KafkaEnabled       bool
	KafkaBrokers       []string
	OrderTopic         string
	FulfillmentTopic   string
	FulfillmentGroupID string

	// Auth
	JWTSecret  string
	SessionTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8082"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Primary: dbFromEnv("DB", DBConfig{Host: "127.0.0.1", Port: "3306", User: "root", Name: "storefront"}),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:       getKafkaBrokerURLs(),
		OrderTopic:         getEnv("ORDER_TOPIC", "order-topic"),
		FulfillmentTopic:   getEnv("FULFILLMENT_TOPIC", "fulfillment-topic"),
		FulfillmentGroupID: getEnv("FULFILLMENT_GROUP_ID", "storefront-fulfillment-group"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.RateLimit, err = getFloat("RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = getBool("KAFKA_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.ProductCacheTTL, err = getDuration("PRODUCT_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	shards, err := getInt("ORDER_SHARD_COUNT", 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= shards; i++ {
		cfg.OrderShards = append(cfg.OrderShards, dbFromEnv(fmt.Sprintf("ORDER_DB%d", i), cfg.Primary))
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "secret"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func dbFromEnv(prefix string, fallback DBConfig) DBConfig {
	return DBConfig{
		Host: getEnv(prefix+"_HOST", fallback.Host),
		Port: getEnv(prefix+"_PORT", fallback.Port),
		User: getEnv(prefix+"_USER", fallback.User),
		Pass: getEnv(prefix+"_PASS", fallback.Pass),
		Name: getEnv(prefix+"_NAME", fallback.Name),
	}
}

func getKafkaBrokerURLs() []string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092,localhost:9093,localhost:9094" // Default brokers
	}
	return strings.Split(brokers, ",")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
