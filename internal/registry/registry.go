package registry

import (
	"context"
	"fmt"
	"log/slog"

	"loom/internal/campaign"
	"loom/internal/handoff"
	"loom/internal/logging"
	"loom/internal/sequencer"
	"loom/internal/services"
)

// ToolKind separates working tools from the single finalize operation every
// stage ends with.
type ToolKind string

const (
	KindAction   ToolKind = "action"
	KindFinalize ToolKind = "finalize"
)

// Tool describes one capability available to a stage.
type Tool struct {
	Name        string              `json:"name"`
	Stage       campaign.Specialist `json:"stage"`
	Kind        ToolKind            `json:"kind"`
	Description string              `json:"description"`
}

// Registry holds the bounded per-stage toolsets and routes each stage's
// finalize operation to the sequencer. It is constructed, not global, so
// tests and alternate assemblies can wire their own.
type Registry struct {
	seq    *sequencer.Sequencer
	tools  map[campaign.Specialist][]Tool
	logger *slog.Logger
}

// New builds the fixed toolsets and binds finalize to the given sequencer.
func New(seq *sequencer.Sequencer, logger *slog.Logger) *Registry {
	r := &Registry{
		seq:    seq,
		tools:  make(map[campaign.Specialist][]Tool, campaign.TotalStages),
		logger: logging.NewComponentLogger(logger, "registry"),
	}
	for stage, actions := range stageActions {
		set := make([]Tool, 0, len(actions)+1)
		for _, a := range actions {
			set = append(set, Tool{Name: a.name, Stage: stage, Kind: KindAction, Description: a.description})
		}
		set = append(set, Tool{
			Name:        finalizeName(stage),
			Stage:       stage,
			Kind:        KindFinalize,
			Description: fmt.Sprintf("validate and record the %s handoff", stage),
		})
		r.tools[stage] = set
	}
	return r
}

func finalizeName(stage campaign.Specialist) string {
	return "finalize-" + string(stage)
}

type actionSpec struct {
	name        string
	description string
}

// stageActions is the complete tool vocabulary. A stage can never reach
// another stage's tools.
var stageActions = map[campaign.Specialist][]actionSpec{
	campaign.SpecialistDataCollection: {
		{"collect-research", "gather audience and market research into data/"},
		{"analyze-pricing", "produce the pricing analysis"},
		{"analyze-dates", "produce the campaign date analysis"},
	},
	campaign.SpecialistContent: {
		{"draft-copy", "write subject, preheader, body, and call to action"},
		{"refine-copy", "revise drafted copy against the consolidated insights"},
	},
	campaign.SpecialistDesign: {
		{"produce-assets", "create visual assets into assets/"},
		{"compile-template", "render the email template into templates/"},
	},
	campaign.SpecialistQuality: {
		{"run-client-tests", "render the template across target email clients"},
		{"check-compliance", "verify CAN-SPAM and GDPR requirements"},
	},
	campaign.SpecialistDelivery: {
		{"package-exports", "assemble final deliverables into exports/"},
		{"write-delivery-report", "record where and when the campaign was delivered"},
	},
}

// ToolsFor returns the toolset for one stage, finalize last.
func (r *Registry) ToolsFor(stage campaign.Specialist) []Tool {
	set := r.tools[stage]
	out := make([]Tool, len(set))
	copy(out, set)
	return out
}

// Lookup finds a tool by name within a stage's own set.
func (r *Registry) Lookup(stage campaign.Specialist, name string) (Tool, bool) {
	for _, tool := range r.tools[stage] {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Finalize invokes the stage's finalize tool. The stage must own the tool;
// there is no cross-stage invocation path.
func (r *Registry) Finalize(ctx context.Context, stage campaign.Specialist, campaignPath string, raw map[string]any, report sequencer.StageReport) (*handoff.Envelope, error) {
	tool, ok := r.Lookup(stage, finalizeName(stage))
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, string(stage), "finalize",
			fmt.Sprintf("no finalize tool registered for stage %q", stage), nil)
	}
	r.logger.Debug("tool invoked",
		logging.String(logging.FieldStage, string(stage)),
		logging.String("tool", tool.Name),
	)
	return r.seq.Finalize(ctx, campaignPath, stage, raw, report)
}
