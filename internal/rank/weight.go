// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores candidate papers against a reference corpus and
// orders them by relevance.
//
// The corpus is weighted by recency: entries are sorted newest first and
// the entry at rank i receives 1/(1+log10(i+1)) before normalization, so
// recent additions dominate while old ones never fall to zero.
package rank

import (
	"errors"
	"math"
	"sort"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrEmptyCorpus is returned when weighting or scoring is asked to run
// against a corpus with no entries.
var ErrEmptyCorpus = errors.New("corpus is empty")

// SortByRecency returns a copy of corpus ordered by AddedAt, most recent
// first. Entries with equal timestamps keep their input order.
func SortByRecency(corpus []types.CorpusEntry) []types.CorpusEntry {
	sorted := make([]types.CorpusEntry, len(corpus))
	copy(sorted, corpus)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AddedAt.After(sorted[j].AddedAt)
	})
	return sorted
}

// Weights returns n time-decay weights for recency ranks 0..n-1. The
// weights are non-increasing and sum to 1.
func Weights(n int) ([]float64, error) {
	if n <= 0 {
		return nil, ErrEmptyCorpus
	}
	w := make([]float64, n)
	var sum float64
	for i := range w {
		w[i] = 1 / (1 + math.Log10(float64(i+1)))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w, nil
}

// WeightCorpus sorts corpus by recency and returns it with the matching
// weights, index for index.
func WeightCorpus(corpus []types.CorpusEntry) ([]types.CorpusEntry, []float64, error) {
	if len(corpus) == 0 {
		return nil, nil, ErrEmptyCorpus
	}
	sorted := SortByRecency(corpus)
	w, err := Weights(len(sorted))
	if err != nil {
		return nil, nil, err
	}
	return sorted, w, nil
}
