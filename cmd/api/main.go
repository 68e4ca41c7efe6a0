package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"animagen/internal/ai"
	"animagen/internal/archive"
	"animagen/internal/config"
	"animagen/internal/httpapi"
	"animagen/internal/jobs"
	"animagen/internal/pipeline"
	"animagen/internal/pkg/logger"
	"animagen/internal/pkg/shutdown"
	"animagen/internal/queue"
	"animagen/internal/storage"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "animagen-api",
	})

	cfg, err := config.Load()
	if err != nil {
		log.LogFatal("invalid configuration", err)
	}

	log.Info("starting animagen API", "port", cfg.Server.Port)

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Redis backs both the job record store and the work queue.
	log.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	log.Info("connecting to PostgreSQL")
	if err := archive.Migrate(cfg.Database.URL); err != nil {
		log.LogFatal("database migration failed", err)
	}
	pool, err := archive.Connect(ctx, cfg.Database)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	log.Info("initializing storage provider")
	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		log.LogFatal("failed to initialize AI provider", err)
	}
	log.Info("AI provider initialized", "provider", provider.Name())

	store := jobs.NewRedisStore(rdb)
	q := queue.NewRedisQueue(rdb, cfg.Queue.Name)
	arc := archive.NewPostgresArchive(pool)

	svc := pipeline.NewService(pipeline.Deps{
		AI:        provider,
		Store:     store,
		Queue:     q,
		Archive:   arc,
		Log:       log,
		JobTTL:    cfg.Jobs.TTL,
		AITimeout: cfg.AI.RequestTimeout,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Pipeline:    svc,
		Store:       store,
		Queue:       q,
		Archive:     arc,
		Storage:     sp,
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
