// Package ai defines the text-completion collaborator consumed by the
// submission pipeline for prompt enhancement and script generation.
package ai

import (
	"context"
	"errors"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrEmptyCompletion     = errors.New("ai provider returned empty completion")
)

// Provider is a narrow request/response interface over a text
// completion service. Calls are fallible and latency-variable; callers
// bound them with a context timeout and degrade on failure.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
