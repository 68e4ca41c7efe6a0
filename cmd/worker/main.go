package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"animagen/internal/archive"
	"animagen/internal/config"
	"animagen/internal/jobs"
	"animagen/internal/pkg/logger"
	"animagen/internal/pkg/shutdown"
	"animagen/internal/queue"
	"animagen/internal/storage"
	"animagen/internal/worker"
	"animagen/internal/worker/renderer"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "animagen-worker",
	})

	cfg, err := config.Load()
	if err != nil {
		log.LogFatal("invalid configuration", err)
	}

	log.Info("starting animagen worker",
		"consumers", cfg.Queue.Consumers,
		"queue", cfg.Queue.Name,
	)

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	pool, err := archive.Connect(ctx, cfg.Database)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	runCtx, cancel := context.WithCancel(ctx)
	shutdownMgr.Register("consumers", func(ctx context.Context) error {
		cancel()
		return nil
	})

	go func() {
		err := worker.Run(runCtx, worker.Deps{
			Store:     jobs.NewRedisStore(rdb),
			Queue:     queue.NewRedisQueue(rdb, cfg.Queue.Name),
			Renderer:  renderer.NewManim(cfg.Render.ManimBin, cfg.Render.MediaDir, cfg.Render.Timeout),
			Storage:   sp,
			Archive:   archive.NewPostgresArchive(pool),
			Log:       log,
			Consumers: cfg.Queue.Consumers,
		})
		if err != nil && err != context.Canceled {
			log.Error("worker stopped with error", "error", err.Error())
		}
	}()

	shutdownMgr.Wait()
}
