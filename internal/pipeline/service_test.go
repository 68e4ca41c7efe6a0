package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"animagen/internal/ai/mock"
	"animagen/internal/archive"
	"animagen/internal/jobs"
	errs "animagen/internal/pkg/errors"
	"animagen/internal/queue"
	"animagen/internal/script"
)

type fakeStore struct {
	m      map[string]*jobs.Job
	putErr error
}

func newFakeStore() *fakeStore { return &fakeStore{m: map[string]*jobs.Job{}} }

func (s *fakeStore) Put(_ context.Context, job *jobs.Job, _ time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	cp := *job
	s.m[job.ID] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*jobs.Job, error) {
	job, ok := s.m[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, mutate func(*jobs.Job)) (*jobs.Job, error) {
	job, ok := s.m[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	mutate(job)
	cp := *job
	return &cp, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

type fakeQueue struct {
	tasks      []jobs.Task
	enqueueErr error
	progress   map[string]int
}

func newFakeQueue() *fakeQueue { return &fakeQueue{progress: map[string]int{}} }

func (q *fakeQueue) Enqueue(_ context.Context, task jobs.Task) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Delivery, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *fakeQueue) Ack(context.Context, *queue.Delivery) error { return nil }

func (q *fakeQueue) ReportProgress(_ context.Context, jobID string, pct int) error {
	q.progress[jobID] = pct
	return nil
}

func (q *fakeQueue) TaskProgress(_ context.Context, jobID string) (int, bool, error) {
	pct, ok := q.progress[jobID]
	return pct, ok, nil
}

func (q *fakeQueue) Recover(context.Context) (int, error) { return 0, nil }
func (q *fakeQueue) Ping(context.Context) error           { return nil }

type fakeArchive struct {
	entries   []archive.Entry
	insertErr error
}

func (a *fakeArchive) Insert(_ context.Context, e archive.Entry) error {
	if a.insertErr != nil {
		return a.insertErr
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeArchive) MarkTerminal(context.Context, string, jobs.Status, string, string) error {
	return nil
}
func (a *fakeArchive) Get(context.Context, string) (*archive.Entry, error)   { return nil, archive.ErrNotFound }
func (a *fakeArchive) ListRecent(context.Context, int) ([]archive.Entry, error) { return nil, nil }
func (a *fakeArchive) Ping(context.Context) error                            { return nil }

func newService(t *testing.T, deps Deps) *Service {
	t.Helper()
	if deps.JobTTL == 0 {
		deps.JobTTL = time.Hour
	}
	if deps.AITimeout == 0 {
		deps.AITimeout = time.Second
	}
	return NewService(deps)
}

func TestSubmitHappyPath(t *testing.T) {
	store := newFakeStore()
	q := newFakeQueue()
	arc := &fakeArchive{}
	provider := mock.NewScriptedProvider(
		"A circle morphing into a square with smooth easing",
		"```python\nfrom manim import *\n\nclass GeneratedScene(Scene):\n    def construct(self):\n        self.play(Create(Circle()))\n```",
	)
	svc := newService(t, Deps{AI: provider, Store: store, Queue: q, Archive: arc})

	job, err := svc.Submit(context.Background(), "  circle to square  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if job.Status != jobs.StatusQueued || job.Progress != 0 {
		t.Errorf("job = %s/%d, want queued/0", job.Status, job.Progress)
	}
	if job.OriginalPrompt != "circle to square" {
		t.Errorf("original prompt = %q", job.OriginalPrompt)
	}
	if job.EnhancedPrompt != "A circle morphing into a square with smooth easing" {
		t.Errorf("enhanced prompt = %q", job.EnhancedPrompt)
	}
	if strings.Contains(job.Script, "```") {
		t.Errorf("script kept markdown fences: %q", job.Script)
	}
	if !strings.Contains(job.Script, "from manim import *") {
		t.Errorf("script missing import: %q", job.Script)
	}

	if _, ok := store.m[job.ID]; !ok {
		t.Error("job document not stored")
	}
	if len(q.tasks) != 1 || q.tasks[0].JobID != job.ID {
		t.Fatalf("queue tasks = %+v", q.tasks)
	}
	if q.tasks[0].Script != job.Script {
		t.Error("task script differs from document script")
	}
	if len(arc.entries) != 1 || arc.entries[0].ID != job.ID {
		t.Errorf("archive entries = %+v", arc.entries)
	}
}

func TestSubmitRejectsEmptyPrompt(t *testing.T) {
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: newFakeStore(), Queue: newFakeQueue()})

	_, err := svc.Submit(context.Background(), "   ")
	if errs.GetCode(err) != errs.CodeInvalidRequest {
		t.Fatalf("code = %s, want INVALID_REQUEST", errs.GetCode(err))
	}
}

func TestSubmitRejectsOversizedPrompt(t *testing.T) {
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: newFakeStore(), Queue: newFakeQueue()})

	_, err := svc.Submit(context.Background(), strings.Repeat("x", MaxPromptLen+1))
	if errs.GetCode(err) != errs.CodeInvalidRequest {
		t.Fatalf("code = %s, want INVALID_REQUEST", errs.GetCode(err))
	}
}

func TestSubmitDegradesWhenProviderFails(t *testing.T) {
	store := newFakeStore()
	q := newFakeQueue()
	svc := newService(t, Deps{
		AI:    mock.NewFailingProvider(errors.New("upstream down")),
		Store: store,
		Queue: q,
	})

	job, err := svc.Submit(context.Background(), "a spinning cube")
	if err != nil {
		t.Fatalf("Submit should degrade, not fail: %v", err)
	}
	if job.EnhancedPrompt != "a spinning cube" {
		t.Errorf("enhanced prompt = %q, want verbatim original", job.EnhancedPrompt)
	}
	if job.Script != script.FallbackScene() {
		t.Error("script should be the fallback scene")
	}
	if len(q.tasks) != 1 {
		t.Fatalf("task not enqueued; tasks = %d", len(q.tasks))
	}
}

func TestSubmitDegradesWhenProviderHangs(t *testing.T) {
	svc := newService(t, Deps{
		AI:        mock.NewTimeoutProvider(),
		Store:     newFakeStore(),
		Queue:     newFakeQueue(),
		AITimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	job, err := svc.Submit(context.Background(), "a spiral")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("submit took %s despite AI timeout", elapsed)
	}
	if job.EnhancedPrompt != "a spiral" {
		t.Errorf("enhanced prompt = %q", job.EnhancedPrompt)
	}
}

func TestSubmitQueueFailure(t *testing.T) {
	store := newFakeStore()
	q := newFakeQueue()
	q.enqueueErr = errors.New("redis gone")
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: store, Queue: q})

	_, err := svc.Submit(context.Background(), "a sine wave")
	if errs.GetCode(err) != errs.CodeQueueUnavailable {
		t.Fatalf("code = %s, want QUEUE_UNAVAILABLE", errs.GetCode(err))
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("redis gone")
	q := newFakeQueue()
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: store, Queue: q})

	_, err := svc.Submit(context.Background(), "a sine wave")
	if errs.GetCode(err) != errs.CodeStoreUnavailable {
		t.Fatalf("code = %s, want STORE_UNAVAILABLE", errs.GetCode(err))
	}
	if len(q.tasks) != 0 {
		t.Error("task enqueued despite store failure")
	}
}

func TestSubmitSurvivesArchiveFailure(t *testing.T) {
	q := newFakeQueue()
	svc := newService(t, Deps{
		AI:      mock.NewProvider(),
		Store:   newFakeStore(),
		Queue:   q,
		Archive: &fakeArchive{insertErr: errors.New("pg down")},
	})

	if _, err := svc.Submit(context.Background(), "a torus"); err != nil {
		t.Fatalf("archive trouble must not fail submission: %v", err)
	}
	if len(q.tasks) != 1 {
		t.Error("task not enqueued")
	}
}

func TestStatusNotFound(t *testing.T) {
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: newFakeStore(), Queue: newFakeQueue()})

	_, err := svc.Status(context.Background(), "missing")
	if errs.GetCode(err) != errs.CodeNotFound {
		t.Fatalf("code = %s, want NOT_FOUND", errs.GetCode(err))
	}
}

func TestStatusMergesQueueProgress(t *testing.T) {
	store := newFakeStore()
	q := newFakeQueue()
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: store, Queue: q})

	job, err := svc.Submit(context.Background(), "a pendulum")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	q.progress[job.ID] = 40

	got, err := svc.Status(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got.Status != jobs.StatusProcessing || got.Progress != 40 {
		t.Errorf("status = %s/%d, want processing/40", got.Status, got.Progress)
	}
}

func TestStatusDocumentWinsOverQueueProgress(t *testing.T) {
	store := newFakeStore()
	q := newFakeQueue()
	svc := newService(t, Deps{AI: mock.NewProvider(), Store: store, Queue: q})

	job, err := svc.Submit(context.Background(), "a helix")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	store.m[job.ID].Complete(jobs.OutputRef(job.ID))
	q.progress[job.ID] = 40

	got, err := svc.Status(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got.Status != jobs.StatusCompleted || got.Progress != 100 {
		t.Errorf("status = %s/%d, want completed/100", got.Status, got.Progress)
	}
	if got.OutputRef != jobs.OutputRef(job.ID) {
		t.Errorf("outputRef = %q", got.OutputRef)
	}
}
