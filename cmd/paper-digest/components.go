// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/internal/embed"
	"github.com/pdiddy/paper-digest/internal/feed"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/internal/tldr"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// addInputFlags registers the flags shared by commands that rank.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "arXiv RSS category expression, e.g. cs.AI+cs.CL (overrides arxiv.query)")
	cmd.Flags().Bool("include-cross", false, "keep cross-listed announcements")
	cmd.Flags().String("candidates", "", "read candidates from a YAML file instead of the arXiv feed")
	cmd.Flags().String("corpus-file", "", "read the library from a Zotero JSON export instead of the API")
	cmd.Flags().Int("max-papers", 0, "number of top papers to keep (overrides digest.max_papers)")
	cmd.Flags().String("format", "", "output format: table, html, yaml, json (overrides digest.format)")
	cmd.Flags().StringP("output", "o", "", "write output to a file instead of stdout")
}

// applyInputFlags copies explicitly set flags over the configuration.
func applyInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("query") {
		cfg.Arxiv.Query, _ = f.GetString("query")
	}
	if f.Changed("include-cross") {
		cfg.Arxiv.IncludeCross, _ = f.GetBool("include-cross")
	}
	if f.Changed("corpus-file") {
		cfg.Zotero.ExportFile, _ = f.GetString("corpus-file")
	}
	if f.Changed("max-papers") {
		cfg.Digest.MaxPapers, _ = f.GetInt("max-papers")
	}
	if f.Changed("format") {
		cfg.Digest.Format, _ = f.GetString("format")
	}
	if f.Lookup("skip-summary") != nil && f.Changed("skip-summary") {
		cfg.Digest.SkipSummary, _ = f.GetBool("skip-summary")
	}
}

// loadCandidates reads candidates from path when set, else from the
// arXiv feed.
func loadCandidates(ctx context.Context, path string) ([]types.Candidate, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading candidates: %w", err)
		}
		var candidates []types.Candidate
		if err := yaml.Unmarshal(data, &candidates); err != nil {
			return nil, fmt.Errorf("parsing candidates %s: %w", path, err)
		}
		return candidates, nil
	}
	return feed.New(cfg.HTTP, logger).Candidates(ctx, cfg.Arxiv)
}

// loadCorpus reads the library from the configured export file or the
// Zotero API.
func loadCorpus(ctx context.Context) ([]types.CorpusEntry, error) {
	if cfg.Zotero.ExportFile != "" {
		return corpus.LoadFile(cfg.Zotero.ExportFile)
	}
	return corpus.New(cfg.HTTP, logger).Fetch(ctx, cfg.Zotero)
}

// openStore opens the database, or returns nil when digest.db_path is
// empty.
func openStore() (*store.Store, error) {
	if cfg.Digest.DBPath == "" {
		return nil, nil
	}
	return store.Open(cfg.Digest.DBPath)
}

// newEncoder builds the embedding provider, cached in st when non-nil.
func newEncoder(st *store.Store) (embed.Provider, error) {
	p, err := embed.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	logger.Debug("encoder ready", zap.String("model", p.Model()))
	if st == nil {
		return p, nil
	}
	return embed.Cached(p, st, logger), nil
}

// newSummarizer builds the language model and tokenizer.
func newSummarizer() (*tldr.Summarizer, error) {
	model, err := tldr.NewModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	tok, err := tldr.NewTokenizer(cfg.LLM.Tokenizer)
	if err != nil {
		return nil, err
	}
	return tldr.NewSummarizer(model, tok, cfg.LLM, logger), nil
}
