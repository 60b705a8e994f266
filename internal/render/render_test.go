// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestStars(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{-3, 0},
		{5.5, 0},
		{6, 0},
		{6.05, 0.5},
		{6.1, 0.5},
		{6.25, 1},
		{7, 2.5},
		{7.5, 4},
		{7.95, 5},
		{8, 5},
		{12, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stars(tt.score), "Stars(%v)", tt.score)
	}
}

func TestStars_MonotoneHalfSteps(t *testing.T) {
	prev := 0.0
	for s := 5.0; s <= 9.0; s += 0.01 {
		got := Stars(s)
		assert.GreaterOrEqual(t, got, prev, "score %v", s)
		assert.Equal(t, got, float64(int(got*2))/2, "half-star steps at %v", s)
		prev = got
	}
}

func TestStarString(t *testing.T) {
	assert.Equal(t, "", StarString(0))
	assert.Equal(t, "½", StarString(0.5))
	assert.Equal(t, "★★½", StarString(2.5))
	assert.Equal(t, "★★★★★", StarString(5))
}

func TestAuthors(t *testing.T) {
	assert.Equal(t, "", Authors(nil))
	assert.Equal(t, "A, B", Authors([]string{"A", "B"}))
	assert.Equal(t, "A, B, C, D, E", Authors([]string{"A", "B", "C", "D", "E"}))
	assert.Equal(t, "A, B, C, D, E, ...", Authors([]string{"A", "B", "C", "D", "E", "F"}))
}

func sample() ([]types.Scored, []types.Result) {
	scored := []types.Scored{
		{Candidate: types.Candidate{ID: "2401.00001", Title: "Sparse <Attention>", Abstract: "abs one", Authors: []string{"A", "B", "C", "D", "E", "F"}, PDFURL: "https://arxiv.org/pdf/2401.00001"}, Score: 7},
		{Candidate: types.Candidate{ID: "2401.00002", Title: "Second", Abstract: "abs two", PDFURL: "https://arxiv.org/pdf/2401.00002"}, Score: 5},
	}
	results := []types.Result{
		{PaperID: "2401.00001", Score: 7, TLDR: "It is sparse."},
	}
	return scored, results
}

func TestHTML(t *testing.T) {
	scored, results := sample()
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, scored, results))
	out := buf.String()

	assert.Contains(t, out, "Sparse &lt;Attention&gt; (arXiv)", "titles are escaped")
	assert.Contains(t, out, "A, B, C, D, E, ...")
	assert.Contains(t, out, "<strong>TLDR:</strong> It is sparse.")
	assert.Contains(t, out, "<strong>TLDR:</strong> abs two", "abstract fills in a missing synopsis")
	assert.Contains(t, out, `href="https://arxiv.org/pdf/2401.00001"`)
	assert.Equal(t, 2, strings.Count(out, `class="full-star"`), "2.5 stars")
	assert.Equal(t, 1, strings.Count(out, `<span class="half-star">`))
	assert.Less(t, strings.Index(out, "2401.00001"), strings.Index(out, "2401.00002"))
}

func TestHTML_CodeLinkAndOrigin(t *testing.T) {
	scored := []types.Scored{
		{Candidate: types.Candidate{ID: "2401.00003", Title: "With Code", CodeURL: "https://github.com/example/repo", PDFURL: "https://arxiv.org/pdf/2401.00003"}, Score: 7},
		{Candidate: types.Candidate{ID: "10.1101/2024.01.01.1", Title: "Cells", Origin: types.OriginBiorxiv}, Score: 7},
	}
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, scored, nil))
	out := buf.String()

	assert.Contains(t, out, `href="https://github.com/example/repo"`)
	assert.Equal(t, 1, strings.Count(out, ">Code</a>"), "only papers with a code URL get the link")
	assert.Contains(t, out, "With Code (arXiv)")
	assert.Contains(t, out, "Cells (bioRxiv)")
	assert.Contains(t, out, "<strong>bioRxiv ID:</strong> 10.1101/2024.01.01.1")
}

func TestHTML_DuplicateIDsUseTheirOwnResult(t *testing.T) {
	scored := []types.Scored{
		{Candidate: types.Candidate{ID: "dup", Title: "A", Abstract: "abs"}, Score: 7},
		{Candidate: types.Candidate{ID: "dup", Title: "B", Abstract: "abs"}, Score: 6.5},
	}
	results := []types.Result{{PaperID: "dup", TLDR: "first"}, {PaperID: "dup", TLDR: "second"}}
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, scored, results))
	out := buf.String()
	assert.Contains(t, out, "TLDR:</strong> first")
	assert.Contains(t, out, "TLDR:</strong> second")
	assert.Less(t, strings.Index(out, "TLDR:</strong> first"), strings.Index(out, "TLDR:</strong> second"))
}

func TestHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, nil, nil))
	assert.Contains(t, buf.String(), "No new papers today.")
}

func TestTable(t *testing.T) {
	scored, results := sample()
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, scored, results))
	out := buf.String()

	assert.Contains(t, out, "SCORE")
	assert.Contains(t, out, "7.00")
	assert.Contains(t, out, "2401.00002")
	assert.Contains(t, out, "It is sparse.")
	assert.Contains(t, out, "★★½")
}
