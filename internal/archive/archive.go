// Package archive keeps a durable Postgres record of every submission.
// The Redis status document expires; the archive is what operators list
// and audit after the fact. Writes are best-effort: archive trouble
// never fails a submission or a render.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"animagen/internal/config"
	"animagen/internal/jobs"
)

var ErrNotFound = errors.New("archive entry not found")

// Entry is one archived submission.
type Entry struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"prompt"`
	Status     jobs.Status `json:"status"`
	ErrorText  string     `json:"errorText,omitempty"`
	VideoKey   string     `json:"videoKey,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Archive is the job history contract.
type Archive interface {
	Insert(ctx context.Context, e Entry) error
	MarkTerminal(ctx context.Context, id string, status jobs.Status, errorText, videoKey string) error
	Get(ctx context.Context, id string) (*Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
}

// Connect opens a pgx pool against the configured database.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresArchive implements Archive using pgx/v5.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(pool *pgxpool.Pool) *PostgresArchive {
	return &PostgresArchive{pool: pool}
}

func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

func (a *PostgresArchive) Insert(ctx context.Context, e Entry) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO job_history (id, prompt, status, created_at)
		 VALUES ($1, $2, $3, $4)`,
		e.ID, e.Prompt, string(e.Status), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job history %s: %w", e.ID, err)
	}
	return nil
}

func (a *PostgresArchive) MarkTerminal(ctx context.Context, id string, status jobs.Status, errorText, videoKey string) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE job_history
		 SET status = $2, error_text = NULLIF($3, ''), video_key = NULLIF($4, ''), finished_at = NOW()
		 WHERE id = $1`,
		id, string(status), errorText, videoKey)
	if err != nil {
		return fmt.Errorf("mark job history %s terminal: %w", id, err)
	}
	return nil
}

func (a *PostgresArchive) Get(ctx context.Context, id string) (*Entry, error) {
	var (
		e         Entry
		status    string
		errorText *string
		videoKey  *string
	)
	err := a.pool.QueryRow(ctx,
		`SELECT id, prompt, status, error_text, video_key, created_at, finished_at
		 FROM job_history WHERE id = $1`, id,
	).Scan(&e.ID, &e.Prompt, &status, &errorText, &videoKey, &e.CreatedAt, &e.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job history %s: %w", id, err)
	}
	e.Status = jobs.Status(status)
	if errorText != nil {
		e.ErrorText = *errorText
	}
	if videoKey != nil {
		e.VideoKey = *videoKey
	}
	return &e, nil
}

func (a *PostgresArchive) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := a.pool.Query(ctx,
		`SELECT id, prompt, status, error_text, video_key, created_at, finished_at
		 FROM job_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list job history: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e         Entry
			status    string
			errorText *string
			videoKey  *string
		)
		if err := rows.Scan(&e.ID, &e.Prompt, &status, &errorText, &videoKey, &e.CreatedAt, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan job history row: %w", err)
		}
		e.Status = jobs.Status(status)
		if errorText != nil {
			e.ErrorText = *errorText
		}
		if videoKey != nil {
			e.VideoKey = *videoKey
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Archive = (*PostgresArchive)(nil)
