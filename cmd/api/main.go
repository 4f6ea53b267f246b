package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/brewbot-backend/api/routes"
	"github.com/angelmondragon/brewbot-backend/internal/cart"
	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	"github.com/angelmondragon/brewbot-backend/internal/conversation"
	"github.com/angelmondragon/brewbot-backend/internal/messenger"
	"github.com/angelmondragon/brewbot-backend/internal/orders"
	"github.com/angelmondragon/brewbot-backend/pkg/config"
	"github.com/angelmondragon/brewbot-backend/pkg/db"
	"github.com/angelmondragon/brewbot-backend/pkg/logger"
	"github.com/angelmondragon/brewbot-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := db.MaybeAutoMigrateDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	menu, err := catalog.New()
	if err != nil {
		logg.Error(context.Background(), "failed to load menu catalog", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRedisStore(redisClient))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, cartService)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	sendClient, err := messenger.NewClient(cfg.Messenger.PageAccessToken,
		messenger.WithBaseURL(cfg.Messenger.GraphBaseURL),
		messenger.WithTimeout(cfg.Messenger.SendTimeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create messenger client", err)
		os.Exit(1)
	}

	eventRouter, err := conversation.NewRouter(conversation.RouterParams{
		Catalog:         menu,
		Sessions:        conversation.NewRedisSessionStore(redisClient, cfg.Session.TTL),
		Carts:           cartService,
		Checkout:        checkoutService,
		Notifier:        sendClient,
		Logger:          logg,
		WelcomeImageURL: cfg.Messenger.WelcomeImageURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dialogue router", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, eventRouter),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
