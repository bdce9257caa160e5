package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	"storefront-service/internal/consumer"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/internal/sharding"
	"storefront-service/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func connectDBEnv(db config.DBConfig) (*sql.DB, error) {
	var conn *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = sql.Open("mysql", db.DSN())
		if err == nil {
			err = conn.Ping()
			if err == nil {
				conn.SetMaxOpenConns(25)
				conn.SetMaxIdleConns(10)
				conn.SetConnMaxLifetime(5 * time.Minute)
				logger.Info().Msgf("Connected to DB %s", db.Name)
				return conn, nil
			}
			conn.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, db.Name, db.Host, db.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", db.Name, db.Host, db.Port, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	db, err := connectDBEnv(cfg.Primary)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to primary DB")
	}
	defer db.Close()

	orderDBs := []*sql.DB{db}
	if len(cfg.OrderShards) > 0 {
		orderDBs = orderDBs[:0]
		for _, shard := range cfg.OrderShards {
			shardDB, err := connectDBEnv(shard)
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to connect to order shard")
			}
			defer shardDB.Close()
			orderDBs = append(orderDBs, shardDB)
		}
	}

	if err := migrations.AutoMigrateCatalog(3, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate catalog tables")
	}
	if err := migrations.AutoMigrateOrders(3, orderDBs...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate order tables")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := sharding.NewShardRouter(len(orderDBs))

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(orderDBs, router)

	var events service.EventPublisher = service.NoopPublisher{}
	if cfg.KafkaEnabled {
		kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderTopic)
		defer kafkaWriter.Close()
		events = service.NewKafkaPublisher(kafkaWriter)
	}

	sessions := auth.NewSessionStore(rdb)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)

	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, events)
	cartService := service.NewCartService(cartRepo, productRepo)
	catalogService := service.NewCatalogService(productRepo, rdb, cfg.ProductCacheTTL)
	authService := service.NewAuthService(userRepo, tokens, sessions)

	if cfg.KafkaEnabled {
		reader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.FulfillmentTopic, cfg.FulfillmentGroupID)
		go consumer.NewConsumer(reader, orderService).Start(ctx)
	}

	handlers := &api.Handlers{
		Orders:   api.NewOrderHandler(orderService),
		Cart:     api.NewCartHandler(cartService),
		Products: api.NewProductHandler(catalogService),
		Auth:     api.NewAuthHandler(authService),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	handlers.Register(e, auth.RequireAuth(cfg.JWTSecret, sessions))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down server")
	}
}
