package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/campaign"
	"loom/internal/paths"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var terminal bool

	cmd := &cobra.Command{
		Use:   "show <campaign-path> [from] [to]",
		Short: "Print a handoff envelope",
		Long: "Prints the envelope for a stage pair, e.g. `loom show ./campaigns/c1 content design`.\n" +
			"With --terminal, prints the delivery completion record instead.",
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				dir := paths.NormalizeCampaignDir(args[0])

				if terminal {
					env, err := app.store.ReadTerminalRecord(cmd.Context(), dir)
					if err != nil {
						return err
					}
					return emitJSON(cmd, env)
				}

				if len(args) != 3 {
					return fmt.Errorf("expected `show <campaign-path> <from> <to>` or --terminal")
				}
				from, ok := campaign.ParseSpecialist(args[1])
				if !ok {
					return fmt.Errorf("unknown stage %q", args[1])
				}
				to, ok := campaign.ParseSpecialist(args[2])
				if !ok {
					return fmt.Errorf("unknown stage %q", args[2])
				}
				env, err := app.store.ReadEnvelope(cmd.Context(), dir, from, to)
				if err != nil {
					return err
				}
				return emitJSON(cmd, env)
			})
		},
	}

	cmd.Flags().BoolVar(&terminal, "terminal", false, "Show the delivery completion record")
	return cmd
}
