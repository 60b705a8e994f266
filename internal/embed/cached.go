// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
)

// Cache persists vectors keyed by model and text hash.
type Cache interface {
	LookupEmbeddings(ctx context.Context, model string, hashes []string) (map[string][]float32, error)
	StoreEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error
}

// namespacer is implemented by wrappers whose output differs from the
// model's raw vectors.
type namespacer interface {
	Namespace() string
}

// namespace returns the cache namespace for p: its model name, qualified
// by any output transformation such as normalization.
func namespace(p Provider) string {
	if n, ok := p.(namespacer); ok {
		return n.Namespace()
	}
	return p.Model()
}

// Cached wraps p with a persistent cache. Only texts missing from the
// cache are sent to p, in a single batch. Cache failures are logged and
// fall through to p.
func Cached(p Provider, cache Cache, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cached{Provider: p, cache: cache, logger: logger}
}

type cached struct {
	Provider
	cache  Cache
	logger *zap.Logger
}

// TextHash returns the cache key for a text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func (c *cached) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	hashes := make([]string, len(texts))
	for i, t := range texts {
		hashes[i] = TextHash(t)
	}

	model := namespace(c.Provider)
	hits, err := c.cache.LookupEmbeddings(ctx, model, hashes)
	if err != nil {
		c.logger.Warn("embedding cache lookup failed", zap.Error(err))
		hits = nil
	}

	var (
		missTexts  []string
		missHashes []string
		queued     = make(map[string]bool)
	)
	for i, h := range hashes {
		if _, ok := hits[h]; ok || queued[h] {
			continue
		}
		queued[h] = true
		missTexts = append(missTexts, texts[i])
		missHashes = append(missHashes, h)
	}

	fresh := make(map[string][]float32, len(missTexts))
	if len(missTexts) > 0 {
		vecs, err := c.Provider.Encode(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missTexts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vecs), len(missTexts))
		}
		for i, h := range missHashes {
			fresh[h] = vecs[i]
		}
		if err := c.cache.StoreEmbeddings(ctx, model, fresh); err != nil {
			c.logger.Warn("embedding cache store failed", zap.Error(err))
		}
	}

	c.logger.Debug("encoded batch",
		zap.String("model", model),
		zap.Int("texts", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missTexts)))

	out := make([][]float32, len(texts))
	for i, h := range hashes {
		if v, ok := fresh[h]; ok {
			out[i] = v
			continue
		}
		out[i] = hits[h]
	}
	return out, nil
}
