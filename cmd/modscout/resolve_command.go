package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modscout/internal/decision"
	"modscout/internal/engine"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a mod URL against the record catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				res, err := eng.Resolve(runCtx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd, res)
				}
				printResolution(cmd, res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the resolution as JSON")
	return cmd
}

func printResolution(cmd *cobra.Command, res engine.Resolution) {
	out := cmd.OutOrStdout()
	d := res.Decision

	fmt.Fprintf(out, "Outcome:      %s (%s)\n", d.Outcome, d.OutcomeSource)
	fmt.Fprintf(out, "Reason:       %s\n", d.Reason)
	fmt.Fprintf(out, "Identity:     %s\n", d.Identity.Summary())
	fmt.Fprintf(out, "Fingerprint:  %s\n", d.Fingerprint)
	fmt.Fprintf(out, "Cache hit:    %s", yesNo(res.CacheHit))
	if res.CacheHit {
		fmt.Fprintf(out, " (%s)", res.CachePartition)
	}
	fmt.Fprintln(out)
	if d.Outcome == decision.OutcomeFound {
		fmt.Fprintf(out, "Matched:      %s\n", d.MatchedRecordID)
	}
	if d.ArbitrationInvoked {
		if d.ArbitrationResult != nil {
			fmt.Fprintf(out, "Judge:        %s, match=%s, confidence=%.2f\n",
				d.ArbitrationResult.Model, yesNo(d.ArbitrationResult.Match), d.ArbitrationResult.Confidence)
		} else {
			fmt.Fprintln(out, "Judge:        no verdict")
		}
	}

	if len(res.Candidates) == 0 {
		return
	}
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		rows = append(rows, []string{
			c.RecordID,
			truncate(c.Title, 48),
			formatScore(c.Score),
			c.ScoreBasis,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Record", "Title", "Score", "Basis"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}
