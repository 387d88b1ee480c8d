package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/campaign"
	"loom/internal/registry"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools [stage]",
		Short: "List the toolset available to each stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages := campaign.Specialists()
			if len(args) == 1 {
				stage, ok := campaign.ParseSpecialist(args[0])
				if !ok {
					return fmt.Errorf("unknown stage %q", args[0])
				}
				stages = []campaign.Specialist{stage}
			}

			return ctx.withServices(func(app *appServices) error {
				var tools []registry.Tool
				for _, stage := range stages {
					tools = append(tools, app.registry.ToolsFor(stage)...)
				}
				if asJSON {
					return emitJSON(cmd, tools)
				}

				rows := make([][]string, 0, len(tools))
				for _, tool := range tools {
					rows = append(rows, []string{
						string(tool.Stage),
						tool.Name,
						string(tool.Kind),
						tool.Description,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]column{{title: "Stage"}, {title: "Tool"}, {title: "Kind"}, {title: "Description"}},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the toolset as JSON")
	return cmd
}
