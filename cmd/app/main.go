package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wichananm65/eco-marketplace/internal/buyerapi"
	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/checkout"
	"github.com/wichananm65/eco-marketplace/internal/config"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/interface/http/handler"
	"github.com/wichananm65/eco-marketplace/internal/interface/http/router"
	"github.com/wichananm65/eco-marketplace/internal/interface/presenter"
	"github.com/wichananm65/eco-marketplace/internal/logger"
	"github.com/wichananm65/eco-marketplace/internal/order"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

func main() {
	envFiles := config.LoadDotEnv()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	log.Info().Strs("env_files", envFiles).Str("storage", cfg.Storage).Msg("starting")

	rules := config.DefaultRules()
	if cfg.RulesFile != "" {
		r, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("load checkout rules")
		}
		rules = r
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("env", cfg.Env).Msg("invalid configuration")
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, tokens are signed with an empty key")
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db = mustOpenDB(cfg.DatabaseURL, log)
		defer db.Close()
	}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = mustOpenRedis(cfg.RedisURL, log)
		defer rdb.Close()
	}

	var storage cart.Storage
	switch cfg.Storage {
	case "postgres":
		if db == nil {
			log.Fatal().Msg("CART_STORAGE=postgres needs DATABASE_URL")
		}
		storage = cart.NewPostgresStorage(db)
	case "redis":
		if rdb == nil {
			log.Fatal().Msg("CART_STORAGE=redis needs REDIS_URL")
		}
		storage = cart.NewRedisStorage(rdb)
	default:
		storage = cart.NewInMemoryStorage()
	}

	var orderRepo order.Repository = order.NewInMemoryRepository()
	if db != nil {
		orderRepo = order.NewPostgresRepository(db)
	}

	var walletCache wallet.Cache = wallet.NewInMemoryCache()
	if rdb != nil {
		walletCache = wallet.NewRedisCache(rdb, wallet.DefaultTTL)
	}

	client := buyerapi.NewClient(cfg.OrderServiceURL, cfg.OrderServiceTimeout, log)
	calc := discount.NewCalculator(rules)
	receipts := order.NewService(orderRepo)
	checkouts := checkout.NewManager(
		cart.NewService(storage, log),
		calc,
		client,
		wallet.NewService(client, walletCache, log),
		receipts,
		log,
	)
	p := presenter.NewCartPresenter(calc)

	app := router.New(cfg.JWTSecret, log, router.Handlers{
		Cart:     handler.NewCartHandler(checkouts, p),
		Checkout: handler.NewCheckoutHandler(checkouts, p),
		Order:    handler.NewOrderHandler(receipts),
	})

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func mustOpenDB(url string, log zerolog.Logger) *sql.DB {
	db, err := sql.Open("pgx", url)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	for _, stmt := range []string{cart.CreateStorageTable, order.CreateTable} {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal().Err(err).Msg("create tables")
		}
	}
	return db
}

func mustOpenRedis(url string, log zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatal().Err(err).Msg("parse REDIS_URL")
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("ping redis")
	}
	return rdb
}
