package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				records, err := app.index.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return emitJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No campaigns.")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.CampaignID,
						string(rec.Type),
						string(rec.Phase),
						string(rec.RunState),
						strconv.Itoa(rec.CompletionPercent) + "%",
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]column{
						{title: "Campaign"},
						{title: "Type"},
						{title: "Phase"},
						{title: "Run"},
						{title: "Done", numeric: true},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the campaign list as JSON")
	return cmd
}
