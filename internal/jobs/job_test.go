package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJob(t *testing.T) {
	j := New("job-1", "bouncing ball", "a ball bouncing on a floor", "from manim import *")

	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, StatusQueued, j.Status)
	assert.Equal(t, 0, j.Progress)
	assert.False(t, j.Terminal())
	assert.False(t, j.CreatedAt.IsZero())
}

func TestSetProgressMonotonic(t *testing.T) {
	j := New("job-1", "p", "p", "s")
	j.MarkProcessing()

	j.SetProgress(40)
	assert.Equal(t, 40, j.Progress)

	j.SetProgress(25)
	assert.Equal(t, 40, j.Progress, "progress must never decrease")

	j.SetProgress(80)
	assert.Equal(t, 80, j.Progress)

	j.SetProgress(250)
	assert.Equal(t, 100, j.Progress, "progress is clamped to 100")
}

func TestCompleteSetsExactlyOutputRef(t *testing.T) {
	j := New("job-1", "p", "p", "s")
	j.MarkProcessing()
	j.Fail("transient")

	j.Complete("/videos/job-1.mp4")

	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 100, j.Progress)
	assert.Equal(t, "/videos/job-1.mp4", j.OutputRef)
	assert.Empty(t, j.ErrorReason, "terminal state carries exactly one of outputRef/errorReason")
	assert.True(t, j.Terminal())
}

func TestFailSetsExactlyErrorReason(t *testing.T) {
	j := New("job-1", "p", "p", "s")
	j.Complete("/videos/job-1.mp4")

	j.Fail("manim exited with status 1")

	assert.Equal(t, StatusFailed, j.Status)
	assert.Equal(t, "manim exited with status 1", j.ErrorReason)
	assert.Empty(t, j.OutputRef)
	assert.True(t, j.Terminal())
}

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "videos/job-9.mp4", ArtifactKey("job-9"))
	assert.Equal(t, "/videos/job-9.mp4", OutputRef("job-9"))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
