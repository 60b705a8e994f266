// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"sort"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Rank pairs each candidate with its score and sorts by descending score.
// The sort is stable: equal scores keep their input order, which makes the
// output a total order reproducible across runs.
func Rank(candidates []types.Candidate, scores []float64) ([]types.Scored, error) {
	if len(candidates) != len(scores) {
		return nil, fmt.Errorf("ranking %d candidates with %d scores", len(candidates), len(scores))
	}
	out := make([]types.Scored, len(candidates))
	for i, c := range candidates {
		out[i] = types.Scored{Candidate: c, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// TopN returns the first n ranked candidates. n <= 0 keeps all of them.
func TopN(scored []types.Scored, n int) []types.Scored {
	if n <= 0 || len(scored) <= n {
		return scored
	}
	return scored[:n]
}
