package handoff

import (
	"fmt"
	"strings"

	"loom/internal/campaign"
	"loom/internal/services"
)

// pairSchema declares the structural requirements for one legal stage pair.
// Four inter-stage pairs plus the terminal delivery record.
type pairSchema struct {
	from            campaign.Specialist
	to              campaign.Specialist
	requiredOutputs []campaign.Specialist
	terminal        bool
}

var pairSchemas = buildPairSchemas()

func buildPairSchemas() []pairSchema {
	order := campaign.Specialists()
	schemas := make([]pairSchema, 0, len(order))
	for i, from := range order {
		schema := pairSchema{
			from:            from,
			requiredOutputs: append([]campaign.Specialist(nil), order[:i+1]...),
		}
		if i+1 < len(order) {
			schema.to = order[i+1]
		} else {
			schema.terminal = true
		}
		schemas = append(schemas, schema)
	}
	return schemas
}

func schemaFor(from, to campaign.Specialist) (pairSchema, bool) {
	for _, schema := range pairSchemas {
		if schema.from == from && schema.to == to {
			return schema, true
		}
	}
	return pairSchema{}, false
}

// Validate checks an envelope against its stage-pair schema. An illegal
// from/to pair returns an ordering violation; structural and semantic
// problems are accumulated and returned together as a schema violation so
// the caller sees every defect at once.
func Validate(env *Envelope) error {
	if env == nil {
		return services.Wrap(services.ErrSchemaViolation, "", "validate handoff", "envelope is nil", nil)
	}

	if !env.From.Valid() {
		return services.Wrap(services.ErrOrderingViolation, string(env.From), "validate handoff",
			fmt.Sprintf("unknown from_specialist %q", env.From), nil)
	}
	schema, ok := schemaFor(env.From, env.To)
	if !ok {
		return services.Wrap(services.ErrOrderingViolation, string(env.From), "validate handoff",
			fmt.Sprintf("illegal stage pair %s→%s; to_specialist must immediately follow from_specialist in pipeline order", env.From, env.To), nil)
	}

	var violations []string
	violations = append(violations, structuralViolations(env)...)
	violations = append(violations, semanticViolations(env, schema)...)
	if len(violations) > 0 {
		return services.NewViolationError(violations, nil)
	}
	return nil
}

func structuralViolations(env *Envelope) []string {
	var out []string
	if strings.TrimSpace(env.HandoffID) == "" {
		out = append(out, "handoff_id: required")
	}
	if strings.TrimSpace(env.CampaignID) == "" {
		out = append(out, "campaign_id: required")
	}
	if strings.TrimSpace(env.CampaignPath) == "" {
		out = append(out, "campaign_path: required")
	}
	if strings.TrimSpace(env.DataVersion) == "" {
		out = append(out, "data_version: required")
	}
	if env.CreatedAt.IsZero() {
		out = append(out, "created_at: required")
	}

	if strings.TrimSpace(env.Campaign.ID) == "" {
		out = append(out, "campaign_context.campaign_id: required")
	} else if env.Campaign.ID != env.CampaignID {
		out = append(out, "campaign_context.campaign_id: must match envelope campaign_id")
	}
	if env.Campaign.Type != "" {
		if _, ok := campaign.ParseType(string(env.Campaign.Type)); !ok {
			out = append(out, fmt.Sprintf("campaign_context.campaign_type: unknown value %q", env.Campaign.Type))
		}
	}

	if env.Workflow.CompletionPercent < 0 || env.Workflow.CompletionPercent > 100 {
		out = append(out, "workflow_status.completion_percentage: must be between 0 and 100")
	}
	for i, s := range env.Workflow.Completed {
		if !s.Valid() {
			out = append(out, fmt.Sprintf("workflow_status.completed_specialists[%d]: unknown specialist %q", i, s))
		}
	}

	if env.Quality.DataQualityScore < 0 || env.Quality.DataQualityScore > 100 {
		out = append(out, "quality_metadata.data_quality_score: must be between 0 and 100")
	}
	if env.Quality.CompletenessScore < 0 || env.Quality.CompletenessScore > 100 {
		out = append(out, "quality_metadata.completeness_score: must be between 0 and 100")
	}
	if env.Quality.ValidationStatus != "" {
		if _, ok := ParseValidationStatus(string(env.Quality.ValidationStatus)); !ok {
			out = append(out, fmt.Sprintf("quality_metadata.validation_status: unknown value %q", env.Quality.ValidationStatus))
		}
	} else {
		out = append(out, "quality_metadata.validation_status: required")
	}
	if env.Quality.ErrorCount < 0 {
		out = append(out, "quality_metadata.error_count: must not be negative")
	}
	if env.Quality.WarningCount < 0 {
		out = append(out, "quality_metadata.warning_count: must not be negative")
	}

	if strings.TrimSpace(env.Narrative.Summary) == "" {
		out = append(out, "handoff_narrative.summary: required")
	}
	return out
}

func semanticViolations(env *Envelope, schema pairSchema) []string {
	var out []string

	if env.Workflow.Current != env.From {
		out = append(out, fmt.Sprintf("workflow_status.current_specialist: got %q, want %q", env.Workflow.Current, env.From))
	}
	if schema.terminal {
		if env.Workflow.Next != nil {
			out = append(out, "workflow_status.next_specialist: must be null on the terminal record")
		}
		if env.Workflow.Phase != campaign.PhaseCompleted {
			out = append(out, fmt.Sprintf("workflow_status.workflow_phase: got %q, want %q", env.Workflow.Phase, campaign.PhaseCompleted))
		}
	} else {
		if env.Workflow.Next == nil || *env.Workflow.Next != schema.to {
			out = append(out, fmt.Sprintf("workflow_status.next_specialist: must be %q", schema.to))
		}
		if env.Workflow.Phase != campaign.PhaseFor(env.From) {
			out = append(out, fmt.Sprintf("workflow_status.workflow_phase: got %q, want %q", env.Workflow.Phase, campaign.PhaseFor(env.From)))
		}
	}

	completed := make(map[campaign.Specialist]struct{}, len(env.Workflow.Completed))
	for _, s := range env.Workflow.Completed {
		completed[s] = struct{}{}
	}
	if _, ok := completed[env.From]; !ok {
		out = append(out, "workflow_status.completed_specialists: must include the finishing specialist")
	}

	wantPercent := campaign.CompletionPercent(len(completed))
	if env.Workflow.CompletionPercent != wantPercent {
		out = append(out, fmt.Sprintf("workflow_status.completion_percentage: got %d, want %d", env.Workflow.CompletionPercent, wantPercent))
	}

	for _, s := range env.Outputs.Keys() {
		if _, ok := completed[s]; !ok {
			out = append(out, fmt.Sprintf("specialist_outputs.%s: present without a matching completed_specialists entry", s))
		}
	}
	for _, s := range schema.requiredOutputs {
		if !env.Outputs.Has(s) {
			out = append(out, fmt.Sprintf("specialist_outputs.%s: required for the %s handoff", s, pairLabel(schema)))
		}
	}
	return out
}

func pairLabel(schema pairSchema) string {
	if schema.terminal {
		return string(schema.from) + " completion"
	}
	return fmt.Sprintf("%s→%s", schema.from, schema.to)
}
