// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// RemoteConfig holds configuration for an OpenAI-compatible embeddings API.
type RemoteConfig struct {
	// BaseURL is the API base (e.g. http://localhost:8080/v1 for TEI,
	// https://api.openai.com/v1 for OpenAI).
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey is required by OpenAI and ignored by most local servers.
	APIKey string

	// BatchSize caps texts per request. Defaults to 512.
	BatchSize int
}

// Validate checks the configuration.
func (c RemoteConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Remote encodes text through an OpenAI-compatible /embeddings endpoint.
type Remote struct {
	embedder embeddings.Embedder
	model    string

	mu        sync.Mutex
	dimension int
}

// NewRemote creates a remote encoder.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// langchaingo requires a token even for servers that ignore it.
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 512
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Remote{embedder: embedder, model: cfg.Model}, nil
}

// Encode embeds texts in input order.
func (r *Remote) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	vecs, err := r.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vecs) > 0 {
		r.mu.Lock()
		r.dimension = len(vecs[0])
		r.mu.Unlock()
	}
	return vecs, nil
}

// Dimension returns the dimension observed on the last call, 0 before the first.
func (r *Remote) Dimension() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dimension
}

// Model returns the configured model name.
func (r *Remote) Model() string { return r.model }

// Close is a no-op; the HTTP client holds no model state.
func (r *Remote) Close() error { return nil }
