package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/campaign"
	"loom/internal/sequencer"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var (
		name         string
		brand        string
		campaignType string
		audience     string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "init <campaign-id>",
		Short: "Create a campaign subtree and register it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := campaign.ParseType(campaignType)
			if !ok {
				return fmt.Errorf("unknown campaign type %q (promotional, transactional, newsletter, announcement)", campaignType)
			}
			return ctx.withServices(func(app *appServices) error {
				meta, dir, err := app.seq.Init(cmd.Context(), sequencer.InitRequest{
					ID:       args[0],
					Name:     name,
					Brand:    brand,
					Type:     typ,
					Audience: audience,
				})
				if err != nil {
					return err
				}
				if asJSON {
					return emitJSON(cmd, meta)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized campaign %s at %s\n", meta.ID, dir)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Human-readable campaign name")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand the campaign belongs to")
	cmd.Flags().StringVar(&campaignType, "type", string(campaign.TypePromotional), "Campaign type")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the campaign metadata as JSON")
	return cmd
}
