// Package worker runs the render consumer pool.
package worker

import (
	"context"
	"sync"
	"time"

	"animagen/internal/archive"
	"animagen/internal/jobs"
	"animagen/internal/pkg/logger"
	"animagen/internal/queue"
	"animagen/internal/storage"
	"animagen/internal/worker/processor"
	"animagen/internal/worker/renderer"
)

type Deps struct {
	Store    jobs.Store
	Queue    queue.Queue
	Renderer renderer.Renderer
	Storage  storage.Provider
	Archive  archive.Archive
	Log      *logger.Logger

	// Consumers is the number of concurrent render consumers.
	Consumers int
	// WorkDir holds per-job script files during a render.
	WorkDir string
}

// Run recovers orphaned deliveries and then consumes tasks until ctx
// is canceled.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	consumers := d.Consumers
	if consumers <= 0 {
		consumers = 1
	}

	// Deliveries left in the processing list by a previous crash go
	// back to pending before any consumer starts.
	if n, err := d.Queue.Recover(ctx); err != nil {
		log.Warn("queue recovery failed", "error", err.Error())
	} else if n > 0 {
		log.Info("recovered orphaned tasks", "count", n)
	}

	p := processor.New(processor.Deps{
		Store:    d.Store,
		Queue:    d.Queue,
		Renderer: d.Renderer,
		Storage:  d.Storage,
		Archive:  d.Archive,
		Log:      log,
		WorkDir:  d.WorkDir,
	})

	var wg sync.WaitGroup
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			consume(ctx, log.With("consumer", id), d.Queue, p)
		}(i)
	}
	wg.Wait()

	log.Info("worker stopped")
	return ctx.Err()
}

func consume(ctx context.Context, log *logger.Logger, q queue.Queue, p *processor.Processor) {
	for {
		d, err := q.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopping")
				return
			}
			log.Warn("dequeue error, retrying", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, d.Task.JobID)
		jobLog := log.WithJobID(d.Task.JobID)

		start := time.Now()
		if err := p.Process(jobCtx, d); err != nil {
			jobLog.Error("task processing error, left for redelivery",
				"error", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			continue
		}
		jobLog.Info("task settled", "duration_ms", time.Since(start).Milliseconds())
	}
}
