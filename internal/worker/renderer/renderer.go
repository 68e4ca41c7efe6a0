// Package renderer invokes the external Manim process that turns a
// generated scene script into an mp4.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"animagen/internal/script"
)

// Request describes one render invocation.
type Request struct {
	// ScriptPath is the Python file holding the scene script.
	ScriptPath string
	// OutputFile is the bare artifact file name, e.g. "<jobId>.mp4".
	OutputFile string
}

// Renderer produces a video file from a scene script and returns the
// path of the rendered artifact.
type Renderer interface {
	Render(ctx context.Context, req Request) (string, error)
}

// Manim runs the manim CLI as a subprocess.
type Manim struct {
	bin      string
	mediaDir string
	timeout  time.Duration
}

func NewManim(bin, mediaDir string, timeout time.Duration) *Manim {
	if bin == "" {
		bin = "manim"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Manim{bin: bin, mediaDir: mediaDir, timeout: timeout}
}

func (m *Manim) Render(ctx context.Context, req Request) (string, error) {
	if err := os.MkdirAll(m.mediaDir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.bin,
		req.ScriptPath,
		script.SceneName,
		"--format=mp4",
		"--media_dir", m.mediaDir,
		"--output_file", req.OutputFile,
		"--resolution", "720,480",
		"--frame_rate", "30",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("render timed out after %s", m.timeout)
		}
		return "", fmt.Errorf("manim failed: %w: %s", err, tail(stderr.String(), 2000))
	}

	out, err := m.findOutput(req.OutputFile)
	if err != nil {
		return "", err
	}
	return out, nil
}

// findOutput locates the rendered file. Manim nests output under
// media_dir/videos/<script>/<quality>/, so we walk rather than guess
// the quality directory name.
func (m *Manim) findOutput(name string) (string, error) {
	var found string
	err := filepath.WalkDir(m.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan media dir: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("manim produced no output file %s", name)
	}
	return found, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
