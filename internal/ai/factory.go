package ai

import (
	"fmt"

	"animagen/internal/ai/gemini"
	"animagen/internal/ai/mock"
	"animagen/internal/ai/openai"
	"animagen/internal/config"
)

// NewProvider constructs the configured text-completion provider.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(cfg.Gemini), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, mock", cfg.Provider)
	}
}
