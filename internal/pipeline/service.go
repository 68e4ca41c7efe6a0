// Package pipeline implements the submission side of the video
// pipeline: prompt enhancement, script generation, job document
// creation, and task enqueue, plus the status query that merges the
// document with queue-observed progress.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"animagen/internal/ai"
	"animagen/internal/archive"
	"animagen/internal/jobs"
	"animagen/internal/pkg/errors"
	"animagen/internal/pkg/logger"
	"animagen/internal/queue"
	"animagen/internal/script"
)

// MaxPromptLen bounds accepted prompt length in runes.
const MaxPromptLen = 2000

// Deps carries the pipeline's collaborators.
type Deps struct {
	AI      ai.Provider
	Store   jobs.Store
	Queue   queue.Queue
	Archive archive.Archive
	Log     *logger.Logger

	// JobTTL is the lifetime of the status document, set once at Put.
	JobTTL time.Duration
	// AITimeout bounds each AI call before the pipeline degrades.
	AITimeout time.Duration
}

// Service orchestrates submissions and status queries.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Log == nil {
		deps.Log = logger.NewDefault()
	}
	return &Service{deps: deps}
}

// Submit runs the synchronous half of the pipeline and returns the
// queued job. AI failures degrade (verbatim prompt, fallback scene)
// rather than failing the submission; only the store and the queue can
// reject it.
func (s *Service) Submit(ctx context.Context, prompt string) (*jobs.Job, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.InvalidRequest("prompt must not be empty")
	}
	if len([]rune(prompt)) > MaxPromptLen {
		return nil, errors.InvalidRequest("prompt too long").WithField("max_len", MaxPromptLen)
	}

	log := s.deps.Log.FromContext(ctx)

	enhanced := s.enhance(ctx, log, prompt)
	scriptText := s.generate(ctx, log, enhanced)

	id := uuid.NewString()
	job := jobs.New(id, prompt, enhanced, scriptText)

	if err := s.deps.Store.Put(ctx, job, s.deps.JobTTL); err != nil {
		return nil, errors.StoreUnavailable(err, "pipeline.Submit")
	}

	if s.deps.Archive != nil {
		if err := s.deps.Archive.Insert(ctx, archive.Entry{
			ID:        id,
			Prompt:    prompt,
			Status:    jobs.StatusQueued,
			CreatedAt: job.CreatedAt,
		}); err != nil {
			log.Warn("archive insert failed", "job_id", id, "error", err)
		}
	}

	task := jobs.Task{
		JobID:          id,
		OriginalPrompt: prompt,
		EnhancedPrompt: enhanced,
		Script:         scriptText,
		SubmittedAt:    job.CreatedAt,
	}
	if err := s.deps.Queue.Enqueue(ctx, task); err != nil {
		// The document stays behind but will never advance; its TTL
		// cleans it up.
		return nil, errors.QueueUnavailable(err, "pipeline.Submit")
	}

	log.Info("job submitted", "job_id", id, "provider", s.deps.AI.Name())
	return job, nil
}

// Status returns the current job view. The document is authoritative
// once the worker has touched it; queue-observed progress only fills in
// while the document still says queued.
func (s *Service) Status(ctx context.Context, id string) (*jobs.Job, error) {
	job, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, errors.NotFound("job", id)
		}
		return nil, errors.StoreUnavailable(err, "pipeline.Status")
	}

	if job.Status == jobs.StatusQueued {
		pct, ok, perr := s.deps.Queue.TaskProgress(ctx, id)
		if perr != nil {
			s.deps.Log.FromContext(ctx).Debug("queue progress lookup failed", "job_id", id, "error", perr)
		} else if ok && pct > job.Progress {
			job.Progress = pct
			job.MarkProcessing()
		}
	}
	return job, nil
}

func (s *Service) enhance(ctx context.Context, log *logger.Logger, prompt string) string {
	cctx, cancel := context.WithTimeout(ctx, s.deps.AITimeout)
	defer cancel()

	out, err := s.deps.AI.Complete(cctx, enhancePrompt(prompt))
	if err != nil {
		log.Warn("prompt enhancement degraded to verbatim prompt", "provider", s.deps.AI.Name(), "error", err)
		return prompt
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return prompt
	}
	return out
}

func (s *Service) generate(ctx context.Context, log *logger.Logger, brief string) string {
	cctx, cancel := context.WithTimeout(ctx, s.deps.AITimeout)
	defer cancel()

	out, err := s.deps.AI.Complete(cctx, scriptPrompt(brief))
	if err != nil {
		log.Warn("script generation degraded to fallback scene", "provider", s.deps.AI.Name(), "error", err)
		return script.FallbackScene()
	}
	cleaned := script.Sanitize(out)
	if strings.TrimSpace(cleaned) == "" {
		return script.FallbackScene()
	}
	return cleaned
}
