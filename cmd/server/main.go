package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/rentalshop/gateway"
	"github.com/example/rentalshop/pkg/auth"
	"github.com/example/rentalshop/pkg/cart"
	"github.com/example/rentalshop/pkg/catalog"
	"github.com/example/rentalshop/pkg/config"
	"github.com/example/rentalshop/pkg/database"
	"github.com/example/rentalshop/pkg/discovery"
	"github.com/example/rentalshop/pkg/grpc"
	"github.com/example/rentalshop/pkg/logging"
	"github.com/example/rentalshop/pkg/orders"
	"github.com/example/rentalshop/pkg/repository"
	"github.com/example/rentalshop/pkg/stats"
	"github.com/example/rentalshop/pkg/upload"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("RENTAL_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(cfg.Log, cfg.App)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting rental shop",
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
		zap.Int("port", cfg.Gateway.Port))

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(db, tokens, logger)
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("Failed to provision admin account", zap.Error(err))
	}

	services := gateway.Services{
		Cart:   cart.NewStore(db, logger),
		Auth:   authService,
		Stats:  stats.NewService(db),
		Health: func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	// Redis backs the rate limiter only; without it requests are not limited.
	if cfg.Redis.Addr != "" {
		redis := repository.NewRedisRepository(&cfg.Redis)
		defer redis.Close()
		if err := redis.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		services.Limiter = redis
	}

	var auditor orders.Auditor
	if cfg.MongoDB.URI != "" {
		audit, err := repository.NewAuditRepository(ctx, &cfg.MongoDB)
		if err != nil {
			logger.Warn("MongoDB unavailable, audit trail disabled", zap.Error(err))
		} else {
			defer audit.Close(context.Background())
			auditor = audit
			services.Audit = audit
			logger.Info("MongoDB connected successfully")
		}
	}
	services.Orders = orders.NewManager(db, auditor, logger)

	var images catalog.ImageUploader
	if host := upload.NewImageHost(&cfg.Upload, logger); host != nil {
		images = host
	}
	services.Catalog = catalog.NewService(db, images, logger)

	gw := gateway.NewGateway(cfg, logger, services)
	gw.SetupRoutes()

	health := grpc.NewHealthServer(cfg.Server.Name, services.Health, 10*time.Second, logger)
	go health.Watch(ctx)

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := health.Start(cfg.Server.Host, cfg.Server.Port); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	var (
		registry *discovery.ServiceRegistry
		instance = &discovery.ServiceInstance{
			Name: cfg.App.Name,
			Host: cfg.Gateway.Host,
			Port: cfg.Gateway.Port,
		}
	)
	if len(cfg.Etcd.Endpoints) > 0 {
		registry, err = discovery.NewServiceRegistry(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service registration", zap.Error(err))
		} else if err := registry.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd", zap.String("address", instance.Addr()))
		}
	}

	logger.Info("Rental shop started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		logger.Error("Server error", zap.Error(err))
	}

	if registry != nil {
		if err := registry.Deregister(context.Background(), instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		registry.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer shutdownCancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	health.Stop()
	cancel()

	logger.Info("Rental shop stopped")
}
