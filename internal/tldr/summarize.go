// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tldr turns a paper's title, abstract, and extracted sections
// into a one-sentence synopsis using a language model.
package tldr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var (
	// ErrInference wraps every failure of the language model call.
	ErrInference = errors.New("inference failed")

	// ErrNoTokenizer is returned when a Summarizer has no Tokenizer.
	ErrNoTokenizer = errors.New("summarizer has no tokenizer")
)

// Prompt is a rendered, budget-checked prompt.
type Prompt struct {
	Text string
	// Tokens is the token count before truncation.
	Tokens    int
	Truncated bool
}

// Summary is the outcome of one summarization.
type Summary struct {
	TLDR   string
	Prompt Prompt
}

// Summarizer sends prompts to a language model one at a time. It holds no
// per-call state, but the model behind it is assumed unsafe for
// concurrent use.
type Summarizer struct {
	Model     llms.Model
	Tokenizer Tokenizer
	// MaxTokens is the prompt budget; zero means DefaultMaxPromptTokens.
	MaxTokens int
	// Timeout bounds each model call; zero means no bound beyond ctx.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewSummarizer returns a Summarizer configured from cfg.
func NewSummarizer(model llms.Model, tok Tokenizer, cfg types.LLMConfig, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		Model:     model,
		Tokenizer: tok,
		MaxTokens: cfg.MaxPromptTokens,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	}
}

func (s *Summarizer) budget() int {
	if s.MaxTokens <= 0 {
		return DefaultMaxPromptTokens
	}
	return s.MaxTokens
}

func (s *Summarizer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Prepare renders the prompt for c and truncates it to the token budget.
// Truncation is logged at info level.
func (s *Summarizer) Prepare(c types.Candidate, sections types.Sections) (Prompt, error) {
	if s.Tokenizer == nil {
		return Prompt{}, ErrNoTokenizer
	}
	text, err := BuildPrompt(c.Title, c.Abstract, sections)
	if err != nil {
		return Prompt{}, err
	}
	out, n, truncated := truncate(s.Tokenizer, text, s.budget())
	if truncated {
		s.logger().Info("prompt truncated",
			zap.String("paper", c.ID),
			zap.Int("tokens", n),
			zap.Int("budget", s.budget()))
	}
	return Prompt{Text: out, Tokens: n, Truncated: truncated}, nil
}

// Summarize produces the synopsis for c. Decoding is deterministic
// (temperature 0, no top-k restriction) and the first choice is returned
// verbatim. Failures are not retried; they wrap ErrInference.
func (s *Summarizer) Summarize(ctx context.Context, c types.Candidate, sections types.Sections) (Summary, error) {
	prompt, err := s.Prepare(c, sections)
	if err != nil {
		return Summary{}, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, Persona),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt.Text),
	}
	start := time.Now()
	resp, err := s.Model.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithTopK(0),
	)
	if err != nil {
		return Summary{Prompt: prompt}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return Summary{Prompt: prompt}, fmt.Errorf("%w: model returned no choices", ErrInference)
	}

	s.logger().Debug("summarized",
		zap.String("paper", c.ID),
		zap.Int("prompt_tokens", prompt.Tokens),
		zap.Duration("elapsed", time.Since(start)))
	return Summary{TLDR: resp.Choices[0].Content, Prompt: prompt}, nil
}
