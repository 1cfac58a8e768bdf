package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		title string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "create <url>",
		Short: "Create a pending catalog record for a URL",
		Long: `Create a pending catalog record for a URL.

Record creation is always an explicit human action; resolutions never create
records. When the latest recorded decision for the URL was FOUND, creation is
refused unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				created, err := eng.CreateRecord(runCtx, title, args[0], force)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created record %s (%s) with status %s.\n",
					created.ID, created.Title, created.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Record title (required)")
	cmd.Flags().BoolVar(&force, "force", false, "Create even when the latest decision for the URL was FOUND")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
