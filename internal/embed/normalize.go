package embed

import (
	"context"
	"math"
)

// Normalizing wraps p so every output vector has unit L2 norm. Zero
// vectors are returned unchanged.
func Normalizing(p Provider) Provider {
	return &normalizing{Provider: p}
}

type normalizing struct {
	Provider
}

// normalizedSuffix keeps normalized vectors apart from raw ones in a cache.
const normalizedSuffix = "+l2"

func (n *normalizing) Namespace() string {
	return namespace(n.Provider) + normalizedSuffix
}

func (n *normalizing) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := n.Provider.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vecs))
	for i, v := range vecs {
		out[i] = Normalize(v)
	}
	return out, nil
}

// Normalize returns a unit-length copy of v.
func Normalize(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sq == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sq)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
