package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a job document does not exist or expired.
var ErrNotFound = errors.New("job not found")

// Store is the job record store. Documents carry a TTL set at creation;
// updates keep the remaining TTL, so a stalled job eventually expires
// from queries. That expiry is deliberate, not a bug.
type Store interface {
	Put(ctx context.Context, job *Job, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, mutate func(*Job)) (*Job, error)
	Ping(ctx context.Context) error
}

// RedisStore implements Store on a shared Redis client. Reads are
// read-after-write consistent with worker updates since both sides talk
// to the same instance.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func jobKey(id string) string {
	return "job:" + id
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Put(ctx context.Context, job *Job, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := s.rdb.Set(ctx, jobKey(job.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("put job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Update applies mutate under read-modify-write. Mutation of a given job
// has a single logical owner at a time, so no stronger primitive is
// needed. The remaining TTL is preserved (KEEPTTL) and progress is
// clamped to be non-decreasing regardless of what mutate did.
func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*Job)) (*Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prevProgress := job.Progress
	mutate(job)
	if job.Progress < prevProgress {
		job.Progress = prevProgress
	}
	job.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, jobKey(id), data, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("update job %s: %w", id, err)
	}
	return job, nil
}

var _ Store = (*RedisStore)(nil)
