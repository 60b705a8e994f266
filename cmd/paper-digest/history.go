// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past runs, or the results of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("digest.db_path is empty; no history is kept")
	}
	defer st.Close()
	ctx := cmd.Context()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if len(args) == 1 {
		results, err := st.Results(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "RANK\tPAPER\tSCORE\tTLDR")
		for i, r := range results {
			note := r.TLDR
			if r.SummaryErr != "" {
				note = "(failed: " + r.SummaryErr + ")"
			}
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", i+1, r.PaperID, r.Score, note)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := st.Runs(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "RUN\tSTARTED\tQUERY\tCANDIDATES\tLIBRARY")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Query, r.Candidates, r.CorpusSize)
	}
	return nil
}
