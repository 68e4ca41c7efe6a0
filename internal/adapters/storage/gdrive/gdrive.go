package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"animagen/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Client implements ports.StorageProvider backed by Google Drive.
// Objects are stored with their key as the Drive file name, inside
// the configured folder. Lookups resolve the fileId by name, so the
// caller only ever needs the key.
type Client struct {
	srv      *drive.Service
	folderID string
}

func NewClient(srv *drive.Service, folderID string) *Client {
	return &Client{srv: srv, folderID: folderID}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.Key == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object key is required")
	}

	file := &drive.File{Name: in.Key}
	if c.folderID != "" {
		file.Parents = []string{c.folderID}
	}

	call := c.srv.Files.Create(file)
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	if _, err := call.Context(ctx).Do(); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	return ports.PutObjectOutput{Key: in.Key, Size: in.Size}, nil
}

func (c *Client) GetObject(ctx context.Context, key string) (rc io.ReadCloser, contentType string, size int64, err error) {
	id, err := c.fileIDByName(ctx, key)
	if err != nil {
		return nil, "", 0, err
	}

	resp, err := c.srv.Files.Get(id).
		SupportsAllDrives(true).
		Download()
	if err != nil {
		return nil, "", 0, err
	}

	contentType = resp.Header.Get("Content-Type")
	size = resp.ContentLength
	return resp.Body, contentType, size, nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	id, err := c.fileIDByName(ctx, key)
	if err != nil {
		return err
	}
	return c.srv.Files.Delete(id).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.srv.Files.List().
		PageSize(1).
		Fields("files(id)").
		Context(ctx).
		Do()
	return err
}

func (c *Client) fileIDByName(ctx context.Context, key string) (string, error) {
	q := fmt.Sprintf("name = '%s' and trashed = false", strings.ReplaceAll(key, "'", "\\'"))
	if c.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", c.folderID)
	}

	list, err := c.srv.Files.List().
		Q(q).
		PageSize(1).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("gdrive object %q: %w", key, os.ErrNotExist)
	}
	return list.Files[0].Id, nil
}
