package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modscout/internal/engine"
)

func newNoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "note <record-id> <note...>",
		Short: "Append an audit note to a catalog record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(runCtx context.Context, eng *engine.Engine) error {
				recordID := args[0]
				note := strings.Join(args[1:], " ")
				if err := eng.AppendNote(runCtx, recordID, note); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appended note to record %s.\n", recordID)
				return nil
			})
		},
	}
}
