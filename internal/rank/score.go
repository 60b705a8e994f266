// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ScoreScale maps weighted similarities into the range the star display
// expects (roughly 6 to 8 for relevant papers).
const ScoreScale = 10.0

// ErrEmbeddingMismatch is returned when the encoder output does not line
// up with its input: wrong vector count or inconsistent dimensions.
var ErrEmbeddingMismatch = errors.New("embedding output does not match input")

// Encoder maps a batch of texts to fixed-dimension vectors. The same
// instance must encode both the corpus and the candidates so that the
// vectors share one embedding space.
//
// Scores are dot products, which equal cosine similarity only when the
// vectors are unit-norm. Encoders whose model does not normalize should
// be wrapped (see embed.Normalizing) or scores become model-dependent.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Scorer computes relevance scores for candidates against a weighted corpus.
type Scorer struct {
	Encoder Encoder
	Logger  *zap.Logger
}

// NewScorer returns a Scorer using enc. A nil logger discards output.
func NewScorer(enc Encoder, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{Encoder: enc, Logger: logger}
}

// Score returns one relevance score per candidate, index for index. The
// corpus is encoded in one batch and the candidates in another.
func (s *Scorer) Score(ctx context.Context, candidates []types.Candidate, corpus []types.CorpusEntry) ([]float64, error) {
	sorted, weights, err := WeightCorpus(corpus)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	corpusTexts := make([]string, len(sorted))
	for i, e := range sorted {
		corpusTexts[i] = e.Abstract
	}
	candTexts := make([]string, len(candidates))
	for i, c := range candidates {
		candTexts[i] = c.Abstract
	}

	corpusVecs, err := s.encode(ctx, corpusTexts)
	if err != nil {
		return nil, fmt.Errorf("encoding corpus: %w", err)
	}
	candVecs, err := s.encode(ctx, candTexts)
	if err != nil {
		return nil, fmt.Errorf("encoding candidates: %w", err)
	}

	sim, err := Similarity(candVecs, corpusVecs)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(candidates))
	for i, row := range sim {
		var acc float64
		for j, v := range row {
			acc += v * weights[j]
		}
		scores[i] = acc * ScoreScale
	}

	s.logger().Debug("scored candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("corpus", len(sorted)))
	return scores, nil
}

// Rank scores the candidates and returns them ordered by descending score.
func (s *Scorer) Rank(ctx context.Context, candidates []types.Candidate, corpus []types.CorpusEntry) ([]types.Scored, error) {
	scores, err := s.Score(ctx, candidates, corpus)
	if err != nil {
		return nil, err
	}
	return Rank(candidates, scores)
}

func (s *Scorer) encode(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.Encoder.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingMismatch, len(vecs), len(texts))
	}
	return vecs, nil
}

func (s *Scorer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Similarity returns the len(a)×len(b) matrix of dot products between the
// rows of a and the rows of b. All vectors must share one dimension.
func Similarity(a, b [][]float32) ([][]float64, error) {
	dim := -1
	for _, set := range [][][]float32{a, b} {
		for _, v := range set {
			if dim < 0 {
				dim = len(v)
				continue
			}
			if len(v) != dim {
				return nil, fmt.Errorf("%w: dimension %d, expected %d", ErrEmbeddingMismatch, len(v), dim)
			}
		}
	}

	out := make([][]float64, len(a))
	for i, x := range a {
		row := make([]float64, len(b))
		for j, y := range b {
			row[j] = dot(x, y)
		}
		out[i] = row
	}
	return out, nil
}

func dot(x, y []float32) float64 {
	var acc float64
	for k := range x {
		acc += float64(x[k]) * float64(y[k])
	}
	return acc
}
