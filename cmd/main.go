package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
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
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"consignment-service/internal/api"
	"consignment-service/internal/config"
	"consignment-service/internal/consumer"
	"consignment-service/internal/repository"
	"consignment-service/internal/service"
	"consignment-service/internal/sharding"
	"consignment-service/migrations"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB", i+1)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %w", err)
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	shards := make([]*sql.DB, 0, len(cfg.DBShards))
	for i, dsn := range cfg.DBShards {
		db, err := connectDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Msgf("Failed to connect to shard %d", i)
		}
		defer db.Close()
		shards = append(shards, db)
	}
	primary := shards[0]

	if err := migrations.AutoMigrateUsers(3, primary); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate users table")
	}
	if err := migrations.AutoMigrateItems(3, primary); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate items table")
	}
	if err := migrations.AutoMigrateOrders(3, shards...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate orders table")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.EventWriter
	if !cfg.IsTest() {
		writer := config.NewKafkaWriter(cfg.Kafka)
		defer writer.Close()
		events = writer
	}

	itemRepo := repository.NewItemRepository(primary)
	orderRepo := repository.NewOrderRepository(shards, sharding.NewShardRouter(len(shards)))
	userRepo := repository.NewUserRepository(primary)

	itemService := service.NewItemService(itemRepo, rdb)
	orderService := service.NewOrderService(orderRepo, itemService, events, rdb)
	userService := service.NewUserService(userRepo, rdb, cfg.JWTSecret)

	if cfg.Admin.Email != "" {
		if err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
	}

	if !cfg.IsTest() {
		reader := config.NewKafkaReader(cfg.Kafka)
		defer reader.Close()
		go consumer.NewConsumer(reader, orderService).Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit.PerSecond),
				Burst:     cfg.RateLimit.Burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"error": "rate limiter error"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	api.RegisterRoutes(e, itemService, orderService, userService, cfg.JWTSecret)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
