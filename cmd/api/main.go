package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/harvestlane/veggiebox-backend/api/routes"
	"github.com/harvestlane/veggiebox-backend/internal/boxes"
	"github.com/harvestlane/veggiebox-backend/internal/delivery"
	"github.com/harvestlane/veggiebox-backend/internal/orders"
	"github.com/harvestlane/veggiebox-backend/internal/packing"
	"github.com/harvestlane/veggiebox-backend/internal/settings"
	"github.com/harvestlane/veggiebox-backend/internal/subscribers"
	"github.com/harvestlane/veggiebox-backend/internal/todos"
	"github.com/harvestlane/veggiebox-backend/internal/webhooks"
	"github.com/harvestlane/veggiebox-backend/pkg/config"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/metrics"
	"github.com/harvestlane/veggiebox-backend/pkg/mongo"
	"github.com/harvestlane/veggiebox-backend/pkg/redis"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
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

	mongoClient, err := mongo.New(context.Background(), cfg.Mongo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mongo", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logg.Error(context.Background(), "error closing mongo", err)
		}
	}()

	// Redis backs the webhook dedupe guard only; the API still serves
	// without it.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, webhook dedupe disabled")
	}

	shopifyClient, err := shopify.New(cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create platform client", err)
		os.Exit(1)
	}

	resolver, err := delivery.NewResolver(cfg.Delivery.Timezone)
	if err != nil {
		logg.Error(context.Background(), "failed to load delivery timezone", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(mongoClient.Collection(mongo.CollectionOrders))
	boxesRepo := boxes.NewRepository(mongoClient.Collection(mongo.CollectionBoxes))

	ordersService, err := orders.NewService(ordersRepo, resolver, shopifyClient, shopifyClient, logg, cfg.Import.Concurrency)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	boxesService, err := boxes.NewService(boxesRepo, shopifyClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create boxes service", err)
		os.Exit(1)
	}
	packingService, err := packing.NewService(boxesRepo, ordersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create packing service", err)
		os.Exit(1)
	}

	var dedupe redis.DedupeStore
	var pinger redis.Pinger
	if redisClient != nil {
		dedupe = redisClient
		pinger = redisClient
	}
	webhooksService, err := webhooks.NewService(ordersService, dedupe, cfg.Redis.WebhookTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhooks service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTP(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Store:           mongoClient,
			Dedupe:          pinger,
			HTTPMetrics:     httpMetrics,
			MetricsRegistry: registry,
			Orders:          ordersService,
			Boxes:           boxesService,
			Packing:         packingService,
			Webhooks:        webhooksService,
			Settings:        settings.NewRepository(mongoClient.Collection(mongo.CollectionSettings)),
			Subscribers:     subscribers.NewRepository(mongoClient.Collection(mongo.CollectionSubscribers)),
			Todos:           todos.NewRepository(mongoClient.Collection(mongo.CollectionTodos)),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
