// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/rank"
	"github.com/pdiddy/paper-digest/internal/source"
	"github.com/pdiddy/paper-digest/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank today's announcements and write a summarized digest",
	Long: `Run fetches the arXiv announcements for the configured query and the
Zotero library, ranks every announcement against the library, and for the
top papers downloads the LaTeX source and asks the language model for a
one-sentence TLDR. Papers whose source cannot be read are summarized from
title and abstract alone; papers whose summary fails are kept without one.

Progress goes to stderr; the digest goes to stdout or --output.`,
	RunE: runDigest,
}

func init() {
	addInputFlags(runCmd)
	runCmd.Flags().Bool("skip-summary", false, "extract sections but do not call the language model")
	runCmd.Flags().Bool("no-history", false, "do not record this run in the database")

	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	applyInputFlags(cmd)
	noHistory, _ := cmd.Flags().GetBool("no-history")
	candidatesFile, _ := cmd.Flags().GetString("candidates")
	ctx := cmd.Context()

	candidates, err := loadCandidates(ctx, candidatesFile)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(os.Stderr, "no new papers today")
		return nil
	}
	library, err := loadCorpus(ctx)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	enc, err := newEncoder(st)
	if err != nil {
		return err
	}
	defer enc.Close()

	p := &digest.Pipeline{
		Ranker:    rank.NewScorer(enc, logger),
		Extractor: extract.New(source.New(cfg.HTTP, logger), logger),
		Logger:    logger,
		Out:       os.Stderr,
	}
	if !cfg.Digest.SkipSummary {
		sum, err := newSummarizer()
		if err != nil {
			return err
		}
		p.Summarizer = sum
	}

	run := store.NewRun(cfg.Arxiv.Query, len(candidates), len(library))
	d, err := p.Run(ctx, candidates, library, digest.Options{
		MaxPapers:   cfg.Digest.MaxPapers,
		SkipSummary: cfg.Digest.SkipSummary,
	})
	if err != nil {
		return err
	}

	if st != nil && !noHistory {
		repeats := 0
		for _, s := range d.Ranked {
			if seen, err := st.Seen(ctx, s.ID); err == nil && seen {
				repeats++
			}
		}
		if repeats > 0 {
			logger.Info("papers already in an earlier digest", zap.Int("count", repeats))
		}
		if err := st.SaveRun(ctx, run, d.Ordered()); err != nil {
			logger.Warn("recording run failed", zap.Error(err))
		} else {
			logger.Info("recorded run", zap.String("run_id", run.ID))
		}
	}

	w, closeOut, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := writeDigest(w, cfg.Digest.Format, d.Ranked, d.Results); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if d.Summary.HasFailures() {
		return fmt.Errorf("%d paper(s) could not be summarized", d.Summary.Failed)
	}
	return nil
}
