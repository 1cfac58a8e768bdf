package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution caches",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache occupancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				stats := eng.CacheStats()
				if jsonOutput {
					return printJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Match cache:  %d entries\n", stats.MatchEntries)
				fmt.Fprintf(out, "Absent cache: %d entries\n", stats.AbsentEntries)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit stats as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty both cache partitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				if err := eng.ClearCaches(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Caches cleared.")
				return nil
			})
		},
	}
}
