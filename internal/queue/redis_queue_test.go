package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"animagen/internal/jobs"
	"animagen/internal/queue"
)

func setupQueue(t *testing.T) *queue.RedisQueue {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = rdb.Close() })

	return queue.NewRedisQueue(rdb, "animagen:render:test")
}

func testTask(jobID string) jobs.Task {
	return jobs.Task{
		JobID:          jobID,
		OriginalPrompt: "bouncing ball",
		EnhancedPrompt: "a red ball bouncing",
		Script:         "from manim import *",
		SubmittedAt:    time.Now().UTC(),
	}
}

func TestEnqueueDequeue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("job-1")))

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	d, err := q.Dequeue(dctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", d.Task.JobID)
	assert.Equal(t, "bouncing ball", d.Task.OriginalPrompt)
}

func TestFIFOOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("first")))
	require.NoError(t, q.Enqueue(ctx, testTask("second")))

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	d1, err := q.Dequeue(dctx)
	require.NoError(t, err)
	d2, err := q.Dequeue(dctx)
	require.NoError(t, err)

	assert.Equal(t, "first", d1.Task.JobID)
	assert.Equal(t, "second", d2.Task.JobID)
}

func TestDequeueBlocksUntilCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.Error(t, err, "Dequeue on an empty queue should block until context expiry")
}

func TestRecoverRedeliversUnacked(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("job-crash")))

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := q.Dequeue(dctx)
	require.NoError(t, err)

	// Simulated crash: never acked. Recover must move it back.
	moved, err := q.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	d, err := q.Dequeue(dctx)
	require.NoError(t, err)
	assert.Equal(t, "job-crash", d.Task.JobID)
}

func TestAckRemovesFromProcessing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("job-done")))

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	d, err := q.Dequeue(dctx)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, d))

	moved, err := q.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved, "acked tasks must not be redelivered")
}

func TestProgressRoundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	_, ok, err := q.TaskProgress(ctx, "job-p")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, q.ReportProgress(ctx, "job-p", 60))

	pct, ok, err := q.TaskProgress(ctx, "job-p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 60, pct)
}

func TestAckClearsProgress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testTask("job-pr")))

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	d, err := q.Dequeue(dctx)
	require.NoError(t, err)

	require.NoError(t, q.ReportProgress(ctx, "job-pr", 80))
	require.NoError(t, q.Ack(ctx, d))

	_, ok, err := q.TaskProgress(ctx, "job-pr")
	require.NoError(t, err)
	assert.False(t, ok, "ack must clear queue-side progress")
}
