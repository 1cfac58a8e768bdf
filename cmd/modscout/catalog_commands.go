package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and refresh the record catalog index",
	}
	catalogCmd.AddCommand(newCatalogReloadCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	return catalogCmd
}

func newCatalogReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Refresh the index from the remote catalog and drop stale cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				count, storeFingerprint, err := eng.ReloadIndex(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records (catalog state %s).\n",
					count, shortFingerprint(storeFingerprint))
				return nil
			})
		},
	}
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed catalog records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				records, err := eng.Records(runCtx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog index is empty.")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.ID,
						truncate(rec.Title, 44),
						truncate(rec.URL, 52),
						rec.Status,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "URL", "Status"},
					rows,
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}
