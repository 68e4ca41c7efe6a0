// Package jobs defines the job document, the queue task payload, and the
// record store that status polling reads from.
package jobs

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the status document for one prompt-to-video request.
// The submission service owns it until the task is enqueued; after that
// only the render worker mutates it.
type Job struct {
	ID             string    `json:"jobId"`
	OriginalPrompt string    `json:"originalPrompt"`
	EnhancedPrompt string    `json:"enhancedPrompt"`
	Script         string    `json:"generatedScript,omitempty"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	OutputRef      string    `json:"outputRef,omitempty"`
	ErrorReason    string    `json:"errorReason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// New creates a freshly submitted job document.
func New(id, originalPrompt, enhancedPrompt, script string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:             id,
		OriginalPrompt: originalPrompt,
		EnhancedPrompt: enhancedPrompt,
		Script:         script,
		Status:         StatusQueued,
		Progress:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Terminal reports whether the job reached completed or failed.
func (j *Job) Terminal() bool {
	return j.Status.Terminal()
}

// MarkProcessing transitions the job to processing.
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
}

// SetProgress raises the progress value. Progress never decreases, so a
// redelivered task restarting from scratch cannot roll the document back.
func (j *Job) SetProgress(pct int) {
	if pct > 100 {
		pct = 100
	}
	if pct > j.Progress {
		j.Progress = pct
	}
}

// Complete moves the job to its successful terminal state. Exactly one
// of OutputRef/ErrorReason is populated in a terminal state.
func (j *Job) Complete(outputRef string) {
	j.Status = StatusCompleted
	j.Progress = 100
	j.OutputRef = outputRef
	j.ErrorReason = ""
}

// Fail moves the job to its failed terminal state.
func (j *Job) Fail(reason string) {
	j.Status = StatusFailed
	j.ErrorReason = reason
	j.OutputRef = ""
}

// Task is the queue payload derived from a job. It carries everything a
// worker needs so the render does not depend on the document surviving.
type Task struct {
	JobID          string    `json:"jobId"`
	OriginalPrompt string    `json:"originalPrompt"`
	EnhancedPrompt string    `json:"enhancedPrompt"`
	Script         string    `json:"script"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// ArtifactKey derives the storage object key for a job's rendered video.
// The key depends only on the job ID, so retrieval is stateless and
// concurrent renders cannot collide.
func ArtifactKey(jobID string) string {
	return fmt.Sprintf("videos/%s.mp4", jobID)
}

// OutputRef derives the client-facing reference for a rendered video.
func OutputRef(jobID string) string {
	return fmt.Sprintf("/videos/%s.mp4", jobID)
}
