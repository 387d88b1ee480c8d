package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/campaign"
	"loom/internal/sequencer"
	"loom/internal/services"
)

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		reportPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "finalize <stage> <campaign-path>",
		Short: "Record a stage's completion and write its handoff envelope",
		Long: "Reads the stage's raw output (a JSON object) from --output or stdin,\n" +
			"validates it, and writes the handoff envelope for the next stage.\n" +
			"The campaign path may be the campaign directory or a handoff file inside it.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, ok := campaign.ParseSpecialist(args[0])
			if !ok {
				return fmt.Errorf("unknown stage %q (data-collection, content, design, quality, delivery)", args[0])
			}

			raw, err := readRawOutput(cmd, outputPath)
			if err != nil {
				return err
			}
			report, err := readStageReport(reportPath)
			if err != nil {
				return err
			}

			return ctx.withServices(func(app *appServices) error {
				env, err := app.registry.Finalize(cmd.Context(), stage, args[1], raw, report)
				if err != nil {
					failure := services.NewFailure(string(stage), err)
					if asJSON {
						_ = emitJSON(cmd, failure)
					}
					return err
				}
				if asJSON {
					return emitJSON(cmd, env)
				}
				out := cmd.OutOrStdout()
				if env.Terminal() {
					fmt.Fprintf(out, "Campaign %s completed (100%%)\n", env.CampaignID)
				} else {
					fmt.Fprintf(out, "Handoff %s recorded: %s -> %s (%d%%)\n",
						env.HandoffID, env.From, env.To, env.Workflow.CompletionPercent)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to the stage's raw output JSON (defaults to stdin)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Path to a stage report JSON (narrative, deliverables, quality)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the envelope (or failure payload) as JSON")
	return cmd
}

func readRawOutput(cmd *cobra.Command, path string) (map[string]any, error) {
	var data []byte
	var err error
	if strings.TrimSpace(path) != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read stage output: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stage output from stdin: %w", err)
		}
	}

	raw := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse stage output: %w", err)
	}
	return raw, nil
}

func readStageReport(path string) (sequencer.StageReport, error) {
	var report sequencer.StageReport
	if strings.TrimSpace(path) == "" {
		return report, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("read stage report: %w", err)
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("parse stage report: %w", err)
	}
	return report, nil
}
