package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/linklite/linklite/config"
	appmodel "github.com/linklite/linklite/internal/app/model"
	apprepository "github.com/linklite/linklite/internal/app/repository"
	appserver "github.com/linklite/linklite/internal/app/server"
	appservice "github.com/linklite/linklite/internal/app/service"
	"github.com/linklite/linklite/internal/infra/logger"
	infraNATS "github.com/linklite/linklite/internal/infra/nats"
	infraPostgres "github.com/linklite/linklite/internal/infra/postgres"
	infraPrometheus "github.com/linklite/linklite/internal/infra/prometheus"
	infraRedis "github.com/linklite/linklite/internal/infra/redis"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	// NATS is optional: without it, click counts are applied directly by the
	// resolver's recorder instead of flowing through JetStream.
	var js nats.JetStreamContext
	if cfg.NATS.Host != "" {
		natsConn, jsCtx, err := infraNATS.Connect(cfg.NATS)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()
		js = jsCtx
		log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))
	} else {
		log.Info("NATS not configured, applying click counts directly")
	}

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)

	allocator := appservice.NewAllocator(linkRepo, appservice.NewRandomGenerator(appservice.DefaultCodeLength))
	if err := allocator.Seed(ctx); err != nil {
		log.Fatal("Failed to seed code allocator", zap.Error(err))
	}

	cache := appservice.NewLinkCache(redisClient)

	var recorder appservice.ClickRecorder
	if js != nil {
		consumer := appservice.NewClickConsumer(js, log, linkRepo)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start click consumer", zap.Error(err))
		}
		recorder = appservice.NewClickPublisher(js, log)
	} else {
		recorder = appservice.NewDBClickRecorder(linkRepo, log)
	}

	resolver := appservice.NewResolver(linkRepo, cache, recorder, log)
	linkService := appservice.NewLinkService(linkRepo, allocator, cache)

	server := appserver.New(appserver.Dependencies{
		Logger:      log,
		Postgres:    pool,
		Redis:       redisClient,
		LinkService: linkService,
		Resolver:    resolver,
		BaseURL:     cfg.Server.BaseURL,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting HTTP server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
