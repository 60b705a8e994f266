// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tldr

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrInvalidConfig is returned for an unusable LLM configuration.
var ErrInvalidConfig = errors.New("invalid LLM configuration")

// placeholderToken satisfies the OpenAI client for local servers (llama.cpp,
// vLLM) that ignore authentication.
const placeholderToken = "no-key"

// NewModel builds a langchaingo model for cfg.Provider.
func NewModel(cfg types.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case types.LLMOpenAI, "":
		opts := []openai.Option{}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		switch {
		case cfg.APIKey != "":
			opts = append(opts, openai.WithToken(cfg.APIKey))
		case cfg.BaseURL != "":
			opts = append(opts, openai.WithToken(placeholderToken))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return m, nil

	case types.LLMAnthropic:
		if cfg.APIKey == "" || cfg.Model == "" {
			return nil, fmt.Errorf("%w: anthropic requires a model and an API key", ErrInvalidConfig)
		}
		if cfg.BaseURL != "" {
			return nil, fmt.Errorf("%w: anthropic does not support a custom base URL", ErrInvalidConfig)
		}
		m, err := anthropic.New(anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("creating anthropic client: %w", err)
		}
		return m, nil

	case types.LLMOllama:
		if cfg.Model == "" {
			return nil, fmt.Errorf("%w: ollama requires a model", ErrInvalidConfig)
		}
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
