package handoff

import (
	"errors"
	"strings"
	"testing"
	"time"

	"loom/internal/campaign"
	"loom/internal/services"
	"loom/internal/stagectx"
)

func validContentEnvelope() *Envelope {
	next := campaign.SpecialistDesign
	return &Envelope{
		HandoffID:    "h-1",
		From:         campaign.SpecialistContent,
		To:           campaign.SpecialistDesign,
		CampaignID:   "c1",
		CampaignPath: "/campaigns/c1",
		DataVersion:  "1.0",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Campaign: campaign.Ref{
			ID:   "c1",
			Name: "spring-sale",
			Type: campaign.TypePromotional,
		},
		Outputs: stagectx.Outputs{
			DataCollection: &stagectx.DataCollectionOutput{},
			Content:        &stagectx.ContentOutput{},
		},
		Workflow: WorkflowStatus{
			Completed:         []campaign.Specialist{campaign.SpecialistDataCollection, campaign.SpecialistContent},
			Current:           campaign.SpecialistContent,
			Next:              &next,
			Phase:             campaign.PhaseContent,
			CompletionPercent: 40,
		},
		Narrative: Narrative{Summary: "content drafted"},
		Quality: QualityMetadata{
			DataQualityScore:  90,
			CompletenessScore: 95,
			ValidationStatus:  ValidationPassed,
		},
	}
}

func TestValidateAcceptsWellFormedEnvelope(t *testing.T) {
	if err := Validate(validContentEnvelope()); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestValidateRejectsSkippedStage(t *testing.T) {
	env := validContentEnvelope()
	env.From = campaign.SpecialistDesign
	env.To = campaign.SpecialistDelivery
	err := Validate(env)
	if !errors.Is(err, services.ErrOrderingViolation) {
		t.Fatalf("expected ordering violation, got %v", err)
	}
}

func TestValidateRejectsReversedPair(t *testing.T) {
	env := validContentEnvelope()
	env.From = campaign.SpecialistDesign
	env.To = campaign.SpecialistContent
	if err := Validate(env); !errors.Is(err, services.ErrOrderingViolation) {
		t.Fatalf("expected ordering violation, got %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	env := validContentEnvelope()
	env.HandoffID = ""
	env.Workflow.CompletionPercent = 55
	env.Quality.DataQualityScore = 140
	env.Narrative.Summary = ""

	err := Validate(env)
	var violations *services.ViolationError
	if !errors.As(err, &violations) {
		t.Fatalf("expected violation list, got %v", err)
	}
	joined := strings.Join(violations.Violations, "\n")
	for _, want := range []string{"handoff_id", "completion_percentage", "data_quality_score", "handoff_narrative.summary"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("violation list missing %q:\n%s", want, joined)
		}
	}
}

func TestValidateOutputsMustBeSubsetOfCompleted(t *testing.T) {
	env := validContentEnvelope()
	env.Outputs.Design = &stagectx.DesignOutput{}
	err := Validate(env)
	var violations *services.ViolationError
	if !errors.As(err, &violations) {
		t.Fatalf("expected violation list, got %v", err)
	}
	if !strings.Contains(strings.Join(violations.Violations, "\n"), "specialist_outputs.design") {
		t.Fatalf("expected outputs subset violation, got %v", violations.Violations)
	}
}

func TestValidateRequiresUpstreamOutputs(t *testing.T) {
	env := validContentEnvelope()
	env.Outputs.DataCollection = nil
	err := Validate(env)
	var violations *services.ViolationError
	if !errors.As(err, &violations) {
		t.Fatalf("expected violation list, got %v", err)
	}
	if !strings.Contains(strings.Join(violations.Violations, "\n"), "specialist_outputs.data-collection") {
		t.Fatalf("expected required-output violation, got %v", violations.Violations)
	}
}

func TestValidateTerminalRecord(t *testing.T) {
	env := validContentEnvelope()
	env.From = campaign.SpecialistDelivery
	env.To = ""
	env.Workflow.Current = campaign.SpecialistDelivery
	env.Workflow.Next = nil
	env.Workflow.Phase = campaign.PhaseCompleted
	env.Workflow.Completed = campaign.Specialists()
	env.Workflow.CompletionPercent = 100
	env.Outputs = stagectx.Outputs{
		DataCollection: &stagectx.DataCollectionOutput{},
		Content:        &stagectx.ContentOutput{},
		Design:         &stagectx.DesignOutput{},
		Quality:        &stagectx.QualityOutput{},
		Delivery:       &stagectx.DeliveryOutput{},
	}
	if err := Validate(env); err != nil {
		t.Fatalf("unexpected rejection of terminal record: %v", err)
	}
	if !env.Terminal() {
		t.Fatal("expected terminal record")
	}

	next := campaign.SpecialistDelivery
	env.Workflow.Next = &next
	if err := Validate(env); err == nil {
		t.Fatal("terminal record with a successor must be rejected")
	}
}
