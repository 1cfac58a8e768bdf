package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export and import portable engine state",
	}
	snapshotCmd.AddCommand(newSnapshotExportCommand(ctx))
	snapshotCmd.AddCommand(newSnapshotImportCommand(ctx))
	return snapshotCmd
}

func newSnapshotExportCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write records, match cache, and decision log to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				path := strings.TrimSpace(pathFlag)
				if path == "" {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					path = cfg.Snapshot.Path
				}
				if err := eng.ExportSnapshot(runCtx, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Snapshot destination (defaults to [snapshot] path)")
	return cmd
}

func newSnapshotImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace local state with a validated snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				snapshot, err := eng.ImportSnapshot(runCtx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported snapshot from %s (created %s):\n", args[0], formatTime(snapshot.Meta.CreatedAt))
				fmt.Fprintf(out, "  records:     %d\n", len(snapshot.Records))
				fmt.Fprintf(out, "  match cache: %d\n", len(snapshot.MatchCache))
				fmt.Fprintf(out, "  decisions:   %d\n", len(snapshot.DecisionLog))
				return nil
			})
		},
	}
}
