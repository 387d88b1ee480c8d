package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/sequencer"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <campaign-path>",
		Short: "Show a campaign's stage progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				snap, err := app.seq.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return emitJSON(cmd, snap)
				}
				renderSnapshot(cmd, snap)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the snapshot as JSON")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, snap sequencer.Snapshot) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	header := fmt.Sprintf("%s (%s, %s)", snap.Meta.ID, snap.Meta.Type, snap.Meta.Status)
	if colorize {
		header = ansiBlue + header + ansiReset
	}
	fmt.Fprintln(out, header)
	fmt.Fprintf(out, "Phase: %s  Run: %s  Completion: %d%%\n", snap.Meta.Phase, snap.Run, snap.CompletionPercent)
	if snap.FailureKind != "" {
		line := fmt.Sprintf("Failure: %s: %s", snap.FailureKind, snap.FailureMessage)
		if colorize {
			line = ansiRed + line + ansiReset
		}
		fmt.Fprintln(out, line)
	}

	rows := make([][]string, 0, len(snap.Stages))
	for i, st := range snap.Stages {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(st.Stage),
			stageStateLabel(st.State, colorize),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{{title: "#", numeric: true}, {title: "Stage"}, {title: "State"}},
		rows,
	))
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func stageStateLabel(state sequencer.StageState, colorize bool) string {
	label := strings.ToUpper(string(state))
	if !colorize {
		return label
	}
	switch state {
	case sequencer.StageCompleted:
		return ansiGreen + label + ansiReset
	case sequencer.StageActive:
		return ansiYellow + label + ansiReset
	case sequencer.StageFailed:
		return ansiRed + label + ansiReset
	default:
		return label
	}
}
