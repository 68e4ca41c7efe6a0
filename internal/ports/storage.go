package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	// Key is the stable artifact key, e.g. "videos/<jobId>.mp4".
	Key         string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	Key  string
	Size int64
}

// StorageProvider stores and serves rendered video artifacts.
// Implementations must make objects retrievable by the same key they
// were stored under, so the API can locate an artifact knowing only
// the job id.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, key string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}
