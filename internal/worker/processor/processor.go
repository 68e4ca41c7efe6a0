// Package processor executes one render task end to end: sanitize the
// scene script, run the renderer, upload the artifact, and write the
// terminal job state.
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"animagen/internal/archive"
	"animagen/internal/jobs"
	"animagen/internal/pkg/errors"
	"animagen/internal/pkg/logger"
	"animagen/internal/queue"
	"animagen/internal/script"
	"animagen/internal/storage"
	"animagen/internal/worker/renderer"
)

type Deps struct {
	Store    jobs.Store
	Queue    queue.Queue
	Renderer renderer.Renderer
	Storage  storage.Provider
	Archive  archive.Archive
	Log      *logger.Logger

	// WorkDir holds the per-job script files. Defaults to os.TempDir().
	WorkDir string
}

type Processor struct {
	store    jobs.Store
	queue    queue.Queue
	renderer renderer.Renderer
	storage  storage.Provider
	archive  archive.Archive
	log      *logger.Logger
	workDir  string
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	workDir := d.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Processor{
		store:    d.Store,
		queue:    d.Queue,
		renderer: d.Renderer,
		storage:  d.Storage,
		archive:  d.Archive,
		log:      log.WithComponent("processor"),
		workDir:  workDir,
	}
}

// Process handles one delivery. A nil return means the delivery was
// fully handled and acked, including terminal render failures. A
// non-nil return leaves the delivery unacked so recovery can redeliver
// it after an infrastructure fault.
func (p *Processor) Process(ctx context.Context, d *queue.Delivery) error {
	task := d.Task
	log := p.log.FromContext(ctx).WithJobID(task.JobID)

	doc, err := p.store.Get(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			// Document expired; nobody can observe the result anymore,
			// so rendering would only produce an orphaned artifact.
			log.Warn("job document missing or expired, discarding task")
			return p.queue.Ack(ctx, d)
		}
		return errors.StoreUnavailable(err, "processor.Process")
	}
	if doc.Terminal() {
		// Redelivered after a crash between terminal write and ack.
		log.Info("job already terminal, discarding duplicate delivery", "status", string(doc.Status))
		return p.queue.Ack(ctx, d)
	}

	// A redelivered task that was mid-processing restarts from scratch;
	// the document's progress clamp keeps the visible value from
	// moving backwards.
	if _, err := p.store.Update(ctx, task.JobID, func(j *jobs.Job) {
		j.MarkProcessing()
		j.SetProgress(10)
	}); err != nil {
		return errors.StoreUnavailable(err, "processor.Process")
	}
	p.reportProgress(ctx, log, task.JobID, 10)

	sceneScript := script.Sanitize(task.Script)
	if strings.TrimSpace(sceneScript) == "" {
		sceneScript = script.FallbackScene()
	}
	p.setProgress(ctx, log, task.JobID, 25)

	scriptPath := filepath.Join(p.workDir, task.JobID+".py")
	if err := os.WriteFile(scriptPath, []byte(sceneScript), 0o644); err != nil {
		return p.fail(ctx, log, d, fmt.Sprintf("could not stage scene script: %v", err))
	}
	defer os.Remove(scriptPath)
	p.setProgress(ctx, log, task.JobID, 40)

	log.Info("render starting")
	p.setProgress(ctx, log, task.JobID, 60)

	outPath, err := p.renderer.Render(ctx, renderer.Request{
		ScriptPath: scriptPath,
		OutputFile: task.JobID + ".mp4",
	})
	if err != nil {
		log.Error("render failed", "error", err.Error())
		return p.fail(ctx, log, d, fmt.Sprintf("rendering failed: %v", err))
	}
	defer os.Remove(outPath)
	p.setProgress(ctx, log, task.JobID, 80)

	if err := p.upload(ctx, task.JobID, outPath); err != nil {
		log.Error("artifact upload failed", "error", err.Error())
		return p.fail(ctx, log, d, fmt.Sprintf("storing rendered video failed: %v", err))
	}

	outputRef := jobs.OutputRef(task.JobID)
	if _, err := p.store.Update(ctx, task.JobID, func(j *jobs.Job) {
		j.Complete(outputRef)
	}); err != nil {
		// Terminal write failed; leave the task unacked so the next
		// delivery can settle the document.
		return errors.StoreUnavailable(err, "processor.Process")
	}
	p.markArchive(ctx, log, task.JobID, jobs.StatusCompleted, "", jobs.ArtifactKey(task.JobID))

	log.Info("render completed", "output_ref", outputRef)
	return p.queue.Ack(ctx, d)
}

func (p *Processor) upload(ctx context.Context, jobID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = p.storage.PutObject(ctx, storage.PutObjectInput{
		Key:         jobs.ArtifactKey(jobID),
		ContentType: "video/mp4",
		Reader:      f,
		Size:        st.Size(),
	})
	return err
}

// fail writes the failed terminal state and acks. The task is settled
// even when the terminal write itself fails: a script that failed once
// is expected to fail again, so redelivery buys nothing.
func (p *Processor) fail(ctx context.Context, log *logger.Logger, d *queue.Delivery, reason string) error {
	if _, err := p.store.Update(ctx, d.Task.JobID, func(j *jobs.Job) {
		j.Fail(reason)
	}); err != nil && !errors.Is(err, jobs.ErrNotFound) {
		log.Error("failed to record job failure", "error", err.Error())
	}
	p.markArchive(ctx, log, d.Task.JobID, jobs.StatusFailed, reason, "")
	return p.queue.Ack(ctx, d)
}

func (p *Processor) setProgress(ctx context.Context, log *logger.Logger, jobID string, pct int) {
	if _, err := p.store.Update(ctx, jobID, func(j *jobs.Job) {
		j.SetProgress(pct)
	}); err != nil && !errors.Is(err, jobs.ErrNotFound) {
		log.Warn("progress update failed", "pct", pct, "error", err.Error())
	}
	p.reportProgress(ctx, log, jobID, pct)
}

func (p *Processor) reportProgress(ctx context.Context, log *logger.Logger, jobID string, pct int) {
	if err := p.queue.ReportProgress(ctx, jobID, pct); err != nil {
		log.Debug("queue progress report failed", "pct", pct, "error", err.Error())
	}
}

func (p *Processor) markArchive(ctx context.Context, log *logger.Logger, jobID string, status jobs.Status, errorText, videoKey string) {
	if p.archive == nil {
		return
	}
	if err := p.archive.MarkTerminal(ctx, jobID, status, errorText, videoKey); err != nil {
		log.Warn("archive update failed", "error", err.Error())
	}
}
