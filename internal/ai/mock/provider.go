// Package mock provides a canned text-completion provider for tests
// and for running the pipeline without external credentials.
package mock

import (
	"context"
)

// Provider satisfies ai.Provider with configurable behavior.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// NewProvider returns a Provider that echoes a canned completion.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, prompt string) (string, error) {
			return "mock completion for: " + prompt, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns err.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until ctx is done.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// NewScriptedProvider returns a Provider that replies with each
// completion in order, repeating the last one.
func NewScriptedProvider(completions ...string) *Provider {
	i := 0
	return &Provider{
		Name_: "mock-scripted",
		CompleteFunc: func(_ context.Context, _ string) (string, error) {
			if i >= len(completions) {
				return completions[len(completions)-1], nil
			}
			out := completions[i]
			i++
			return out, nil
		},
	}
}
