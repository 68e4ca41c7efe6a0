// Package queue provides the durable render task queue. Tasks are
// delivered at least once: a consumer crash before Ack leaves the task
// in the processing list, and Recover moves it back for redelivery.
package queue

import (
	"context"

	"animagen/internal/jobs"
)

// Delivery is one dequeued task plus the handle needed to ack it.
type Delivery struct {
	Task jobs.Task

	// raw is the exact queue payload; Ack removes it from the
	// processing list by value.
	raw string
}

// Queue is the work queue contract between submission and the worker pool.
type Queue interface {
	// Enqueue appends a task. Errors propagate synchronously so a
	// failed submission is never silently accepted.
	Enqueue(ctx context.Context, task jobs.Task) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (*Delivery, error)
	// Ack marks the delivery consumed. Also called for discarded
	// duplicates so a broken task is never redelivered forever.
	Ack(ctx context.Context, d *Delivery) error
	// ReportProgress records queue-side progress for a job.
	ReportProgress(ctx context.Context, jobID string, pct int) error
	// TaskProgress returns the queue-observed progress for a job, if any.
	TaskProgress(ctx context.Context, jobID string) (int, bool, error)
	// Recover moves unacked deliveries back to the pending list.
	// Called at worker start; returns the number of redelivered tasks.
	Recover(ctx context.Context) (int, error)
	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
}
