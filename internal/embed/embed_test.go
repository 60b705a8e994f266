// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// --- fakes ---

// countingProvider encodes each text as [len(text), 1] and records batches.
type countingProvider struct {
	batches [][]string
	err     error
}

func (p *countingProvider) Encode(_ context.Context, texts []string) ([][]float32, error) {
	p.batches = append(p.batches, append([]string(nil), texts...))
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (p *countingProvider) Dimension() int { return 2 }
func (p *countingProvider) Model() string  { return "fake-model" }
func (p *countingProvider) Close() error   { return nil }

type memCache struct {
	data      map[string]map[string][]float32
	lookupErr error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]map[string][]float32)}
}

func (m *memCache) LookupEmbeddings(_ context.Context, model string, hashes []string) (map[string][]float32, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	out := make(map[string][]float32)
	for _, h := range hashes {
		if v, ok := m.data[model][h]; ok {
			out[h] = v
		}
	}
	return out, nil
}

func (m *memCache) StoreEmbeddings(_ context.Context, model string, vectors map[string][]float32) error {
	if m.data[model] == nil {
		m.data[model] = make(map[string][]float32)
	}
	for h, v := range vectors {
		m.data[model][h] = v
	}
	return nil
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)
}

func TestNormalizing_UnitNorm(t *testing.T) {
	p := Normalizing(&countingProvider{})
	vecs, err := p.Encode(context.Background(), []string{"a", "abcdef", "abcdefghijkl"})
	require.NoError(t, err)
	for _, v := range vecs {
		var sq float64
		for _, x := range v {
			sq += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sq), 1e-6)
	}
	assert.Equal(t, "fake-model", p.Model())
}

// --- Cached ---

func TestCached_NormalizationIsPartOfTheNamespace(t *testing.T) {
	inner := &countingProvider{}
	cache := newMemCache()
	ctx := context.Background()

	raw, err := Cached(inner, cache, nil).Encode(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 1}, raw[0])

	norm, err := Cached(Normalizing(inner), cache, nil).Encode(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Len(t, inner.batches, 2, "normalized vectors are not served from the raw entry")
	assert.InDelta(t, 3/math.Sqrt(10), norm[0][0], 1e-6)

	assert.Contains(t, cache.data, "fake-model")
	assert.Contains(t, cache.data, "fake-model+l2")
	assert.Equal(t, "fake-model", Normalizing(inner).Model(), "the model name itself is unchanged")
}

func TestCached_EncodesOnlyMisses(t *testing.T) {
	inner := &countingProvider{}
	cache := newMemCache()
	p := Cached(inner, cache, nil)
	ctx := context.Background()

	first, err := p.Encode(ctx, []string{"alpha", "beta", "alpha"})
	require.NoError(t, err)
	require.Len(t, inner.batches, 1)
	assert.Equal(t, []string{"alpha", "beta"}, inner.batches[0], "duplicates are encoded once")
	assert.Equal(t, first[0], first[2])

	second, err := p.Encode(ctx, []string{"beta", "gamma", "alpha"})
	require.NoError(t, err)
	require.Len(t, inner.batches, 2)
	assert.Equal(t, []string{"gamma"}, inner.batches[1])

	assert.Equal(t, []float32{4, 1}, second[0])
	assert.Equal(t, []float32{5, 1}, second[1])
	assert.Equal(t, []float32{5, 1}, second[2])
}

func TestCached_LookupFailureFallsThrough(t *testing.T) {
	inner := &countingProvider{}
	cache := newMemCache()
	cache.lookupErr = errors.New("disk gone")

	vecs, err := Cached(inner, cache, nil).Encode(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}}, vecs)
}

func TestCached_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Cached(&countingProvider{err: boom}, newMemCache(), nil).Encode(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
}

func TestCached_EmptyInput(t *testing.T) {
	_, err := Cached(&countingProvider{}, newMemCache(), nil).Encode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// --- New / config ---

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(types.EmbeddingConfig{Provider: "word2vec"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRemoteConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, RemoteConfig{Model: "m"}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, RemoteConfig{BaseURL: "http://x"}.Validate(), ErrInvalidConfig)
	assert.NoError(t, RemoteConfig{BaseURL: "http://x", Model: "m"}.Validate())
}

// --- Remote ---

func TestRemote_Encode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Object string `json:"object"`
			Data   []item `json:"data"`
			Model  string `json:"model"`
		}{Object: "list", Model: req.Model}
		for i, in := range req.Input {
			resp.Data = append(resp.Data, item{Object: "embedding", Embedding: []float32{float32(len(in)), 0, 1}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	p, err := NewRemote(RemoteConfig{BaseURL: ts.URL + "/v1", Model: "bge-small"})
	require.NoError(t, err)
	defer p.Close()

	vecs, err := p.Encode(context.Background(), []string{"ab", "abcd"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{2, 0, 1}, vecs[0])
	assert.Equal(t, []float32{4, 0, 1}, vecs[1])
	assert.Equal(t, 3, p.Dimension())
	assert.Equal(t, "bge-small", p.Model())
}

func TestRemote_EmptyInput(t *testing.T) {
	p, err := NewRemote(RemoteConfig{BaseURL: "http://127.0.0.1:1/v1", Model: "m"})
	require.NoError(t, err)
	_, err = p.Encode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
