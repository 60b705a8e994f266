// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// candidate papers, reference corpus entries, ranking output, and the
// per-paper digest records produced by summarization.
package types

import (
	"fmt"
	"time"
)

// ZoteroTimeLayout is the layout of Zotero's dateAdded field
// (e.g. "2024-03-18T09:12:44Z").
const ZoteroTimeLayout = "2006-01-02T15:04:05Z"

// Preprint servers a Candidate can come from.
const (
	OriginArxiv   = "arXiv"
	OriginBiorxiv = "bioRxiv"
)

// Candidate is a newly announced paper competing for a place in the digest.
// The ranking and summarization stages read candidates but never modify
// them; scores and synopses are returned as separate records.
type Candidate struct {
	// ID is the source identifier (e.g. the arXiv ID "2401.01234").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract, used for embedding and prompting.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// SourceURL locates the downloadable source archive. When empty, an
	// arXiv ID is fetched from the arXiv e-print endpoint.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// PDFURL links to the rendered paper.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// CodeURL links to the paper's code repository, if known.
	CodeURL string `json:"code_url,omitempty" yaml:"code_url,omitempty"`

	// Origin names the preprint server. Empty means OriginArxiv.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`

	// Published is the announcement or publication date, if known.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// AnnounceType is the arXiv announcement kind ("new", "cross", "replace").
	AnnounceType string `json:"announce_type,omitempty" yaml:"announce_type,omitempty"`
}

// CorpusEntry is one item of the user's reference collection.
type CorpusEntry struct {
	// Key is the library item key.
	Key string `json:"key" yaml:"key"`

	// Title is the item title. Informational only.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Abstract is the item abstract; the only text used for similarity.
	Abstract string `json:"abstract" yaml:"abstract"`

	// AddedAt is when the item entered the collection.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// ParseAddedAt parses a dateAdded timestamp in YYYY-MM-DDTHH:MM:SSZ form.
func ParseAddedAt(s string) (time.Time, error) {
	t, err := time.Parse(ZoteroTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing added-at timestamp %q: %w", s, err)
	}
	return t, nil
}

// Sections holds the introduction and conclusion pulled from a paper's
// source. An empty string means the section was not found.
type Sections struct {
	Introduction string `json:"introduction" yaml:"introduction"`
	Conclusion   string `json:"conclusion" yaml:"conclusion"`
}

// IsEmpty reports whether neither section was found.
func (s Sections) IsEmpty() bool {
	return s.Introduction == "" && s.Conclusion == ""
}

// OriginName returns the preprint server of c, defaulting to arXiv.
func (c Candidate) OriginName() string {
	if c.Origin == "" {
		return OriginArxiv
	}
	return c.Origin
}

// Scored pairs a candidate with its relevance score. The score is a
// weighted similarity aggregate scaled for display; it is not bounded
// to [0,1].
type Scored struct {
	Candidate `yaml:",inline"`
	Score     float64 `json:"score" yaml:"score"`
}

// Result is the digest record for one summarized candidate, keyed by
// PaperID so the caller can merge it with its own paper objects.
type Result struct {
	PaperID string  `json:"paper_id" yaml:"paper_id"`
	Score   float64 `json:"score" yaml:"score"`

	// TLDR is the one-sentence synopsis. Empty when summarization was
	// skipped or failed.
	TLDR string `json:"tldr,omitempty" yaml:"tldr,omitempty"`

	// Sections is the raw extraction output.
	Sections Sections `json:"sections" yaml:"sections"`

	// Truncated reports whether the prompt was cut to the token budget.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`

	// ExtractErr records why section extraction degraded to empty sections.
	ExtractErr string `json:"extract_error,omitempty" yaml:"extract_error,omitempty"`

	// SummaryErr records why no synopsis was produced.
	SummaryErr string `json:"summary_error,omitempty" yaml:"summary_error,omitempty"`
}
