// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls the introduction and conclusion out of a paper's
// LaTeX source archive. Extraction is best effort: a missing or unreadable
// archive yields empty sections, never a failed batch.
package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/source"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var (
	// ErrNoSource is returned when the source archive could not be fetched.
	ErrNoSource = errors.New("source archive unavailable")

	// ErrNoTeX is returned when an archive holds no .tex files.
	ErrNoTeX = errors.New("no .tex files in source archive")
)

// Fetcher downloads a candidate's source archive into dir and returns the
// path of the downloaded file.
type Fetcher interface {
	Fetch(ctx context.Context, c types.Candidate, dir string) (string, error)
}

// Extractor fetches source archives and extracts sections from them.
type Extractor struct {
	Fetcher Fetcher
	Logger  *zap.Logger
}

// New returns an Extractor that downloads through f.
func New(f Fetcher, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Fetcher: f, Logger: logger}
}

// Sections downloads the source of c into a scratch directory, extracts
// its sections, and removes the directory before returning. On failure the
// returned sections are empty and the error says why; the failure is also
// logged at warn level.
//
// bioRxiv preprints carry no LaTeX source: the abstract stands in for the
// introduction, and a conclusion is extracted only when c.SourceURL
// points at a source archive.
func (e *Extractor) Sections(ctx context.Context, c types.Candidate) (types.Sections, error) {
	if c.OriginName() == types.OriginBiorxiv {
		return e.biorxivSections(ctx, c), nil
	}
	sections, err := e.fromSource(ctx, c)
	if err != nil {
		e.logger().Warn("section extraction failed",
			zap.String("paper", c.ID),
			zap.Error(err))
		return types.Sections{}, err
	}
	if sections.IsEmpty() {
		e.logger().Debug("no introduction or conclusion found", zap.String("paper", c.ID))
	}
	return sections, nil
}

func (e *Extractor) biorxivSections(ctx context.Context, c types.Candidate) types.Sections {
	out := types.Sections{Introduction: c.Abstract}
	if c.SourceURL == "" {
		return out
	}
	fetched, err := e.fromSource(ctx, c)
	if err != nil {
		e.logger().Warn("conclusion extraction failed",
			zap.String("paper", c.ID),
			zap.Error(err))
		return out
	}
	out.Conclusion = fetched.Conclusion
	return out
}

func (e *Extractor) fromSource(ctx context.Context, c types.Candidate) (types.Sections, error) {
	var sections types.Sections
	err := source.WithTempDir("paper-digest-", func(dir string) error {
		archive, err := e.Fetcher.Fetch(ctx, c, dir)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoSource, err)
		}
		sections, err = FromArchive(archive)
		return err
	})
	return sections, err
}

func (e *Extractor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// FromArchive reads the source archive at path and extracts its sections.
func FromArchive(path string) (types.Sections, error) {
	files, err := ReadArchiveFile(path)
	if err != nil {
		return types.Sections{}, err
	}
	sections, texCount := FromFiles(files)
	if texCount == 0 {
		return types.Sections{}, ErrNoTeX
	}
	return sections, nil
}
