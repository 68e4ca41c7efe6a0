package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"animagen/internal/jobs"
)

// RedisQueue implements Queue on Redis lists. Pending tasks live in a
// list; BLMOVE shifts a task into a per-queue processing list where it
// stays until acked, which is what makes delivery at-least-once.
type RedisQueue struct {
	rdb  *redis.Client
	name string
}

func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

func (q *RedisQueue) processingKey() string { return q.name + ":processing" }
func (q *RedisQueue) progressKey() string   { return q.name + ":progress" }

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}

func (q *RedisQueue) Enqueue(ctx context.Context, task jobs.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.JobID, err)
	}
	if err := q.rdb.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.JobID, err)
	}
	return nil
}

// Dequeue blocks until a task arrives, moving it atomically into the
// processing list. Cancellation comes from ctx.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	raw, err := q.rdb.BLMove(ctx, q.name, q.processingKey(), "RIGHT", "LEFT", 0).Result()
	if err != nil {
		return nil, err
	}

	var task jobs.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		// Malformed payload: drop it from the processing list so it
		// cannot wedge the queue.
		_ = q.rdb.LRem(ctx, q.processingKey(), 1, raw).Err()
		return nil, fmt.Errorf("unmarshal task payload: %w", err)
	}

	return &Delivery{Task: task, raw: raw}, nil
}

func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	pipe := q.rdb.TxPipeline()
	pipe.LRem(ctx, q.processingKey(), 1, d.raw)
	pipe.HDel(ctx, q.progressKey(), d.Task.JobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ack task %s: %w", d.Task.JobID, err)
	}
	return nil
}

func (q *RedisQueue) ReportProgress(ctx context.Context, jobID string, pct int) error {
	return q.rdb.HSet(ctx, q.progressKey(), jobID, pct).Err()
}

func (q *RedisQueue) TaskProgress(ctx context.Context, jobID string) (int, bool, error) {
	val, err := q.rdb.HGet(ctx, q.progressKey(), jobID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	pct, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("parse progress for %s: %w", jobID, err)
	}
	return pct, true, nil
}

// Recover drains the processing list back into pending. Tasks left
// there belong to consumers that crashed before acking; the job
// document decides on redelivery whether a render actually reruns.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		_, err := q.rdb.LMove(ctx, q.processingKey(), q.name, "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover processing list: %w", err)
		}
		moved++
	}
}

var _ Queue = (*RedisQueue)(nil)
