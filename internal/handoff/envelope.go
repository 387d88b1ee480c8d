package handoff

import (
	"strings"
	"time"

	"loom/internal/campaign"
	"loom/internal/stagectx"
)

// ValidationStatus summarizes a stage's own quality checks.
type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationWarning ValidationStatus = "warning"
	ValidationFailed  ValidationStatus = "failed"
)

// ParseValidationStatus converts a string into a known ValidationStatus.
func ParseValidationStatus(value string) (ValidationStatus, bool) {
	normalized := ValidationStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ValidationPassed, ValidationWarning, ValidationFailed:
		return normalized, true
	}
	return "", false
}

// WorkflowStatus is the envelope's view of overall pipeline progress.
type WorkflowStatus struct {
	Completed         []campaign.Specialist `json:"completed_specialists"`
	Current           campaign.Specialist   `json:"current_specialist"`
	Next              *campaign.Specialist  `json:"next_specialist"`
	Phase             campaign.Phase        `json:"workflow_phase"`
	CompletionPercent int                   `json:"completion_percentage"`
}

// FileRecord describes one file a stage created.
type FileRecord struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Description string `json:"description,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
}

// DirectorySummary describes one populated output directory.
type DirectorySummary struct {
	Path        string `json:"path"`
	FileCount   int    `json:"file_count,omitempty"`
	Description string `json:"description,omitempty"`
}

// Deliverables lists what the finishing stage produced on disk.
type Deliverables struct {
	CreatedFiles      []FileRecord       `json:"created_files,omitempty"`
	OutputDirectories []DirectorySummary `json:"output_directories,omitempty"`
	KeyOutputs        []string           `json:"key_outputs,omitempty"`
}

// Narrative is the free-text handoff summary for the next stage.
type Narrative struct {
	Summary         string   `json:"summary"`
	ContextForNext  string   `json:"context_for_next,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	PriorityItems   []string `json:"priority_items,omitempty"`
	PotentialIssues []string `json:"potential_issues,omitempty"`
	ValidationNotes []string `json:"validation_notes,omitempty"`
	SuccessCriteria []string `json:"success_criteria,omitempty"`
}

// QualityMetadata scores the finishing stage's output.
type QualityMetadata struct {
	DataQualityScore  int              `json:"data_quality_score"`
	CompletenessScore int              `json:"completeness_score"`
	ValidationStatus  ValidationStatus `json:"validation_status"`
	ErrorCount        int              `json:"error_count"`
	WarningCount      int              `json:"warning_count"`
	ProcessingSeconds float64          `json:"processing_seconds,omitempty"`
}

// Envelope is the unit exchanged between two adjacent stages. The terminal
// record written when delivery completes has an empty To and a nil
// workflow-status successor.
type Envelope struct {
	HandoffID        string              `json:"handoff_id"`
	From             campaign.Specialist `json:"from_specialist"`
	To               campaign.Specialist `json:"to_specialist,omitempty"`
	CampaignID       string              `json:"campaign_id"`
	CampaignPath     string              `json:"campaign_path"`
	TraceID          string              `json:"trace_id,omitempty"`
	DataVersion      string              `json:"data_version"`
	CreatedAt        time.Time           `json:"created_at"`
	ExecutionSeconds float64             `json:"execution_seconds,omitempty"`

	Campaign     campaign.Ref     `json:"campaign_context"`
	Outputs      stagectx.Outputs `json:"specialist_outputs"`
	Workflow     WorkflowStatus   `json:"workflow_status"`
	Deliverables Deliverables     `json:"deliverables"`
	Narrative    Narrative        `json:"handoff_narrative"`
	Quality      QualityMetadata  `json:"quality_metadata"`
}

// Terminal reports whether this is the end-of-pipeline record.
func (e *Envelope) Terminal() bool {
	return e.From == campaign.SpecialistDelivery && e.To == ""
}
