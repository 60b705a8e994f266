// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/source"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var tldrCmd = &cobra.Command{
	Use:   "tldr <archive-or-arxiv-id>",
	Short: "Summarize one paper from its LaTeX source",
	Long: `Tldr extracts the introduction and conclusion from a LaTeX source archive
(a local .tar.gz, .tar, or gzipped .tex file, or an arXiv ID whose source
is downloaded) and prints a one-sentence TLDR. With --sections-only it
prints the extracted sections instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runTLDR,
}

func init() {
	tldrCmd.Flags().String("title", "", "paper title used in the prompt")
	tldrCmd.Flags().String("abstract", "", "paper abstract used in the prompt")
	tldrCmd.Flags().Bool("sections-only", false, "print the extracted sections and stop")

	rootCmd.AddCommand(tldrCmd)
}

func runTLDR(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	abstract, _ := cmd.Flags().GetString("abstract")
	sectionsOnly, _ := cmd.Flags().GetBool("sections-only")
	ctx := cmd.Context()

	c := types.Candidate{ID: args[0], Title: title, Abstract: abstract}

	var (
		sections types.Sections
		err      error
	)
	if _, statErr := os.Stat(args[0]); statErr == nil {
		sections, err = extract.FromArchive(args[0])
	} else if id, ok := source.ArxivID(args[0]); ok {
		c.ID = id
		sections, err = extract.New(source.New(cfg.HTTP, logger), logger).Sections(ctx, c)
	} else {
		return fmt.Errorf("%q is neither a file nor an arXiv ID", args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; summarizing from title and abstract\n", err)
	}

	if sectionsOnly {
		fmt.Printf("== Introduction ==\n%s\n\n== Conclusion ==\n%s\n", sections.Introduction, sections.Conclusion)
		return nil
	}

	sum, err := newSummarizer()
	if err != nil {
		return err
	}
	out, err := sum.Summarize(ctx, c, sections)
	if err != nil {
		return err
	}
	if out.Prompt.Truncated {
		fmt.Fprintf(os.Stderr, "note: prompt truncated from %d tokens\n", out.Prompt.Tokens)
	}
	fmt.Println(out.TLDR)
	return nil
}
