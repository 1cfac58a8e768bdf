package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect the decision log",
	}
	logCmd.AddCommand(newLogListCommand(ctx))
	logCmd.AddCommand(newLogShowCommand(ctx))
	logCmd.AddCommand(newLogClearCommand(ctx))
	return logCmd
}

func newLogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded decisions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				decisions, err := eng.ListDecisions(runCtx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd, decisions)
				}
				if len(decisions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No decisions recorded.")
					return nil
				}
				rows := make([][]string, 0, len(decisions))
				for _, d := range decisions {
					rows = append(rows, []string{
						shortFingerprint(d.Fingerprint),
						truncate(d.Identity.URL, 52),
						string(d.Outcome),
						string(d.OutcomeSource),
						formatTime(d.DecidedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Fingerprint", "URL", "Outcome", "Source", "Decided"},
					rows,
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit decisions as JSON")
	return cmd
}

func newLogShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <fingerprint|url>",
		Short: "Show one decision by fingerprint or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				d, err := eng.FindDecision(runCtx, args[0])
				if err != nil {
					return err
				}
				if d == nil {
					return fmt.Errorf("no decision recorded for %q", args[0])
				}
				if jsonOutput {
					return printJSON(cmd, d)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Fingerprint:   %s\n", d.Fingerprint)
				fmt.Fprintf(out, "URL:           %s\n", d.Identity.URL)
				fmt.Fprintf(out, "Identity:      %s\n", d.Identity.Summary())
				fmt.Fprintf(out, "Decided:       %s\n", formatTime(d.DecidedAt))
				fmt.Fprintf(out, "Outcome:       %s (%s)\n", d.Outcome, d.OutcomeSource)
				fmt.Fprintf(out, "Reason:        %s\n", d.Reason)
				fmt.Fprintf(out, "Candidates:    %d (%s)\n", d.CandidateCount, d.Ambiguity)
				fmt.Fprintf(out, "Arbitration:   %s\n", yesNo(d.ArbitrationInvoked))
				if d.ArbitrationResult != nil {
					fmt.Fprintf(out, "Judge verdict: %s, match=%s, confidence=%.2f\n",
						d.ArbitrationResult.Model, yesNo(d.ArbitrationResult.Match), d.ArbitrationResult.Confidence)
				}
				if d.MatchedRecordID != "" {
					fmt.Fprintf(out, "Matched:       %s\n", d.MatchedRecordID)
				}
				fmt.Fprintf(out, "Catalog state: %s\n", shortFingerprint(d.StoreFingerprint))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the decision as JSON")
	return cmd
}

func newLogClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				removed, err := eng.ClearDecisions(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d decisions.\n", removed)
				return nil
			})
		},
	}
}
