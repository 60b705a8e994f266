// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest runs the daily pipeline: rank candidates against the
// corpus, then extract and summarize the top papers one at a time.
package digest

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/rank"
	"github.com/pdiddy/paper-digest/internal/tldr"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultMaxPapers bounds how many ranked candidates are summarized.
const DefaultMaxPapers = 50

// Ranker scores and orders candidates against the corpus.
type Ranker interface {
	Rank(ctx context.Context, candidates []types.Candidate, corpus []types.CorpusEntry) ([]types.Scored, error)
}

// Extractor returns a candidate's introduction and conclusion. On failure
// it returns empty sections along with the error.
type Extractor interface {
	Sections(ctx context.Context, c types.Candidate) (types.Sections, error)
}

// Summarizer produces a candidate's synopsis.
type Summarizer interface {
	Summarize(ctx context.Context, c types.Candidate, sections types.Sections) (tldr.Summary, error)
}

// Options control a run.
type Options struct {
	// MaxPapers is how many top candidates are processed; zero means
	// DefaultMaxPapers, negative means all.
	MaxPapers int
	// SkipSummary stops after extraction; results carry raw sections.
	SkipSummary bool
}

// BatchSummary counts per-candidate outcomes.
type BatchSummary struct {
	Summarized int
	Extracted  int
	Degraded   int
	Failed     int
}

// Total returns the number of candidates processed.
func (s BatchSummary) Total() int {
	return s.Summarized + s.Extracted + s.Degraded + s.Failed
}

// HasFailures reports whether any candidate ended without a synopsis
// because summarization failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Digest is the outcome of a run. Results[i] belongs to Ranked[i];
// candidates sharing an ID keep separate results.
type Digest struct {
	// Ranked holds the processed candidates, best first.
	Ranked  []types.Scored
	Results []types.Result
	Summary BatchSummary
}

// Ordered returns the results in rank order.
func (d Digest) Ordered() []types.Result {
	out := make([]types.Result, len(d.Results))
	copy(out, d.Results)
	return out
}

// Result returns the result of the best-ranked candidate with paper ID id.
func (d Digest) Result(id string) (types.Result, bool) {
	for _, r := range d.Results {
		if r.PaperID == id {
			return r, true
		}
	}
	return types.Result{}, false
}

// Pipeline wires the stages of a run. Out receives one progress line per
// candidate; it may be nil.
type Pipeline struct {
	Ranker     Ranker
	Extractor  Extractor
	Summarizer Summarizer
	Logger     *zap.Logger
	Out        io.Writer
}

// Run ranks candidates and processes the top ones sequentially. Errors in
// ranking (an empty corpus, an encoder failure) abort the run. Errors for
// a single candidate are recorded in its Result and the run continues.
// Cancelling ctx stops the run between candidates and returns what was
// done so far with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, candidates []types.Candidate, corpus []types.CorpusEntry, opts Options) (Digest, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	scored, err := p.Ranker.Rank(ctx, candidates, corpus)
	if err != nil {
		return Digest{}, fmt.Errorf("ranking: %w", err)
	}

	limit := opts.MaxPapers
	if limit == 0 {
		limit = DefaultMaxPapers
	}
	if limit > 0 {
		scored = rank.TopN(scored, limit)
	}
	logger.Info("ranked candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("corpus", len(corpus)),
		zap.Int("selected", len(scored)))

	d := Digest{Ranked: scored, Results: make([]types.Result, 0, len(scored))}
	for i, s := range scored {
		if err := ctx.Err(); err != nil {
			d.Ranked = scored[:i]
			return d, err
		}
		r := p.process(ctx, s, opts, logger)
		d.Results = append(d.Results, r)
		d.Summary.count(r, opts)
		report(out, r, opts)
	}

	fmt.Fprintf(out, "\nDigest summary: %d summarized, %d extracted, %d degraded, %d failed (total: %d)\n",
		d.Summary.Summarized, d.Summary.Extracted, d.Summary.Degraded, d.Summary.Failed, d.Summary.Total())
	return d, nil
}

func (p *Pipeline) process(ctx context.Context, s types.Scored, opts Options, logger *zap.Logger) types.Result {
	r := types.Result{PaperID: s.ID, Score: s.Score}

	sections, err := p.Extractor.Sections(ctx, s.Candidate)
	if err != nil {
		r.ExtractErr = err.Error()
		sections = types.Sections{}
	}
	r.Sections = sections
	if opts.SkipSummary {
		return r
	}

	sum, err := p.Summarizer.Summarize(ctx, s.Candidate, sections)
	r.Truncated = sum.Prompt.Truncated
	if err != nil {
		r.SummaryErr = err.Error()
		logger.Warn("summarization failed", zap.String("paper", s.ID), zap.Error(err))
		return r
	}
	r.TLDR = sum.TLDR
	return r
}

func (s *BatchSummary) count(r types.Result, opts Options) {
	switch {
	case r.SummaryErr != "":
		s.Failed++
	case r.ExtractErr != "":
		s.Degraded++
	case opts.SkipSummary:
		s.Extracted++
	default:
		s.Summarized++
	}
}

func report(w io.Writer, r types.Result, opts Options) {
	switch {
	case r.SummaryErr != "":
		fmt.Fprintf(w, "failed:     %s (%s)\n", r.PaperID, r.SummaryErr)
	case r.ExtractErr != "":
		fmt.Fprintf(w, "degraded:   %s (%s)\n", r.PaperID, r.ExtractErr)
	case opts.SkipSummary:
		fmt.Fprintf(w, "extracted:  %s\n", r.PaperID)
	default:
		fmt.Fprintf(w, "summarized: %s (%.2f)\n", r.PaperID, r.Score)
	}
}
