// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed provides the text encoders used for relevance ranking.
//
// Encoders are constructed once, reused for every batch of a run, and
// released with Close. Two providers are available: a local ONNX model
// through fastembed and any OpenAI-compatible embeddings endpoint through
// langchaingo.
package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid embedding configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// DefaultModel is used when no model is configured.
const DefaultModel = "BAAI/bge-small-en-v1.5"

// Provider is an encoder with an explicit lifecycle.
type Provider interface {
	// Encode maps texts to vectors, one per text, in input order.
	Encode(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension, or 0 if not yet known.
	Dimension() int

	// Model returns the model identifier, used as the cache namespace.
	Model() string

	// Close releases model resources.
	Close() error
}

// New builds the provider selected by cfg and applies the normalizing
// wrapper when requested.
func New(cfg types.EmbeddingConfig) (Provider, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case types.EmbeddingFastEmbed, "":
		p, err = NewFastEmbed(FastEmbedConfig{Model: model, CacheDir: cfg.CacheDir})
	case types.EmbeddingRemote:
		p, err = NewRemote(RemoteConfig{BaseURL: cfg.BaseURL, Model: model, APIKey: cfg.APIKey})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Normalize {
		p = Normalizing(p)
	}
	return p, nil
}
