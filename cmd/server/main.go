package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/config"
	httpDelivery "github.com/slimsamil/Wortmann2Shopify/internal/delivery/http"
	"github.com/slimsamil/Wortmann2Shopify/internal/infrastructure/shopify"
	"github.com/slimsamil/Wortmann2Shopify/internal/infrastructure/store"
	"github.com/slimsamil/Wortmann2Shopify/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting Wortmann2Shopify",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("shop", cfg.Shopify.ShopURL))

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to connect to product database", zap.Error(err))
	}
	defer db.Close()

	source := store.NewSource(db, logger)
	client := shopify.NewClient(shopify.Config{
		ShopURL:           cfg.Shopify.ShopURL,
		AccessToken:       cfg.Shopify.AccessToken,
		APIVersion:        cfg.Shopify.APIVersion,
		RequestsPerSecond: cfg.Shopify.RequestsPerSecond,
		Burst:             cfg.Shopify.Burst,
		MaxAttempts:       cfg.Shopify.MaxAttempts,
		PageSize:          cfg.Shopify.PageSize,
	}, logger)

	syncService := usecase.NewSyncService(source, client, logger)

	handler := httpDelivery.NewHandler(syncService, source, client, cfg.Sync.DefaultBatchSize)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
