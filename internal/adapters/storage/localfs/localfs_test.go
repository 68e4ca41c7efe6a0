package localfs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"animagen/internal/ports"
)

func TestPutGetDelete(t *testing.T) {
	root := t.TempDir()
	fs := New(root)
	ctx := context.Background()

	out, err := fs.PutObject(ctx, ports.PutObjectInput{
		Key:    "videos/job-1.mp4",
		Reader: strings.NewReader("fake mp4 bytes"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if out.Size != int64(len("fake mp4 bytes")) {
		t.Fatalf("size = %d", out.Size)
	}

	rc, ct, size, err := fs.GetObject(ctx, "videos/job-1.mp4")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()

	if ct != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", ct)
	}
	if size != out.Size {
		t.Errorf("size = %d, want %d", size, out.Size)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "fake mp4 bytes" {
		t.Errorf("body = %q", data)
	}

	if err := fs.DeleteObject(ctx, "videos/job-1.mp4"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if _, _, _, err := fs.GetObject(ctx, "videos/job-1.mp4"); !os.IsNotExist(err) {
		t.Errorf("GetObject after delete: %v", err)
	}
}

func TestGetObjectMissing(t *testing.T) {
	fs := New(t.TempDir())
	if _, _, _, err := fs.GetObject(context.Background(), "videos/nope.mp4"); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestPing(t *testing.T) {
	fs := New(t.TempDir())
	if err := fs.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := New("/does/not/exist").Ping(context.Background()); err == nil {
		t.Fatal("Ping on missing root should fail")
	}
}
