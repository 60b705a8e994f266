// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/rank"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score announcements against the library without summarizing",
	Long: `Rank encodes the library and the announcements, weights library items by
how recently they were added, and prints the announcements ordered by
relevance score. No sources are downloaded and no language model is used.`,
	RunE: runRank,
}

func init() {
	addInputFlags(rankCmd)
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	applyInputFlags(cmd)
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

	scored, err := rank.NewScorer(enc, logger).Rank(ctx, candidates, library)
	if err != nil {
		return err
	}
	scored = rank.TopN(scored, cfg.Digest.MaxPapers)

	w, closeOut, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := writeDigest(w, cfg.Digest.Format, scored, nil); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
