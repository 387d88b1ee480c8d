package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"loom/internal/campaign"
	"loom/internal/config"
	"loom/internal/extract"
	"loom/internal/handoff"
	"loom/internal/index"
	"loom/internal/logging"
	"loom/internal/paths"
	"loom/internal/services"
	"loom/internal/stagectx"
	"loom/internal/store"
)

// Sequencer drives the five-stage pipeline: it admits stage completions in
// order, turns raw stage output into a validated handoff envelope, and
// advances campaign metadata. There is no retry or rollback; a failed stage
// leaves the campaign where it was and records the failure in the index.
type Sequencer struct {
	store       *store.Store
	index       *index.Index
	extractor   *extract.Extractor
	dataVersion string
	logger      *slog.Logger

	now   func() time.Time
	newID func() string
}

// New wires a Sequencer from its collaborators.
func New(cfg *config.Config, st *store.Store, idx *index.Index, logger *slog.Logger) *Sequencer {
	policy := extract.Policy{
		FallbacksEnabled:  cfg.Extraction.FallbacksEnabled,
		DefaultAssetTheme: cfg.Extraction.DefaultAssetTheme,
	}
	return &Sequencer{
		store:       st,
		index:       idx,
		extractor:   extract.New(policy, logger),
		dataVersion: cfg.Workflow.DataVersion,
		logger:      logging.NewComponentLogger(logger, "sequencer"),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// InitRequest describes a campaign to create.
type InitRequest struct {
	ID       string
	Name     string
	Brand    string
	Type     campaign.Type
	Audience string
}

// Init creates the campaign subtree and registers the campaign in the index.
func (s *Sequencer) Init(ctx context.Context, req InitRequest) (campaign.Metadata, paths.CampaignDir, error) {
	if strings.TrimSpace(req.ID) == "" {
		return campaign.Metadata{}, "", services.Wrap(services.ErrConfiguration, "", "init", "campaign id is required", nil)
	}
	if _, ok := campaign.ParseType(string(req.Type)); !ok {
		return campaign.Metadata{}, "", services.Wrap(services.ErrConfiguration, "", "init",
			fmt.Sprintf("unknown campaign type %q", req.Type), nil)
	}

	meta := campaign.Metadata{
		ID:        req.ID,
		Name:      req.Name,
		Brand:     req.Brand,
		Type:      req.Type,
		Audience:  req.Audience,
		CreatedAt: s.now(),
		Phase:     campaign.PhaseDataCollection,
		Status:    campaign.StatusActive,
	}
	dir, err := s.store.Bootstrap(ctx, meta)
	if err != nil {
		return campaign.Metadata{}, "", err
	}

	// Bootstrap is idempotent; reflect what is actually on disk.
	meta, err = s.store.ReadMetadata(ctx, dir)
	if err != nil {
		return campaign.Metadata{}, "", err
	}
	if err := s.index.Upsert(ctx, s.record(meta, index.RunInitializing)); err != nil {
		return campaign.Metadata{}, "", err
	}

	s.logger.Info("campaign initialized",
		logging.String(logging.FieldCampaignID, meta.ID),
		logging.String("type", string(meta.Type)),
	)
	return meta, dir, nil
}

// StageReport carries the caller-supplied narrative, deliverables, and
// quality self-assessment for a finishing stage.
type StageReport struct {
	Deliverables     handoff.Deliverables    `json:"deliverables,omitempty"`
	Narrative        handoff.Narrative       `json:"handoff_narrative,omitempty"`
	Quality          handoff.QualityMetadata `json:"quality_metadata,omitempty"`
	TraceID          string                  `json:"trace_id,omitempty"`
	ExecutionSeconds float64                 `json:"execution_seconds,omitempty"`
}

func (r StageReport) withDefaults(stage campaign.Specialist) StageReport {
	if strings.TrimSpace(r.Narrative.Summary) == "" {
		r.Narrative.Summary = fmt.Sprintf("%s stage completed", stage)
	}
	if r.Quality.ValidationStatus == "" {
		r.Quality.ValidationStatus = handoff.ValidationPassed
	}
	return r
}

// Finalize records the completion of one stage. It accepts either the
// campaign directory or a handoff file path, extracts and validates the
// stage's output, writes the envelope atomically, and advances the campaign.
// Nothing is persisted when any step fails.
func (s *Sequencer) Finalize(ctx context.Context, campaignPath string, stage campaign.Specialist, raw map[string]any, report StageReport) (*handoff.Envelope, error) {
	dir := paths.NormalizeCampaignDir(campaignPath)
	logger := logging.WithContext(ctx, s.logger).With(
		logging.String(logging.FieldStage, string(stage)),
		logging.String("dir", dir.String()),
	)

	meta, err := s.store.ReadMetadata(ctx, dir)
	if err != nil {
		return nil, s.fail(ctx, logger, "", stage, err)
	}
	logger = logger.With(logging.String(logging.FieldCampaignID, meta.ID))

	if err := admit(meta, stage); err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	result, err := s.extractor.Run(ctx, stage, raw, dir)
	if err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	prior, err := s.priorOutputs(ctx, dir, stage)
	if err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	merged, err := buildOutputs(meta.Ref(), stage, result.Values, prior)
	if err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	env := s.compose(meta, dir, stage, merged, report.withDefaults(stage))
	if err := handoff.Validate(env); err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	file, err := s.store.WriteEnvelope(ctx, dir, env)
	if err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	updated, err := s.store.UpdateMetadata(ctx, dir, func(m *campaign.Metadata) error {
		m.Completed = m.Completed.MarkDone(stage)
		if next, ok := stage.Next(); ok {
			m.Phase = campaign.PhaseFor(next)
		} else {
			m.Phase = campaign.PhaseCompleted
			m.Status = campaign.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	run := index.RunRunning
	if updated.Completed.AllDone() {
		run = index.RunCompleted
	}
	if err := s.index.Upsert(ctx, s.record(updated, run)); err != nil {
		return nil, s.fail(ctx, logger, meta.ID, stage, err)
	}

	logger.Info("stage finalized",
		logging.String("file", file.String()),
		logging.Int("completion_percent", updated.CompletionPercent()),
	)
	return env, nil
}

// admit enforces strict pipeline order: a stage may finalize only once, and
// only after its predecessor has.
func admit(meta campaign.Metadata, stage campaign.Specialist) error {
	if !stage.Valid() {
		return services.Wrap(services.ErrOrderingViolation, string(stage), "admit",
			fmt.Sprintf("unknown stage %q", stage), nil)
	}
	if meta.Completed.Done(stage) {
		return services.Wrap(services.ErrOrderingViolation, string(stage), "admit",
			"stage already completed; the pipeline does not re-run stages", nil)
	}
	if prev, ok := stage.Previous(); ok && !meta.Completed.Done(prev) {
		return services.Wrap(services.ErrOrderingViolation, string(stage), "admit",
			fmt.Sprintf("predecessor %s has not completed", prev), nil)
	}
	return nil
}

// priorOutputs loads the accumulated outputs from the predecessor's envelope.
func (s *Sequencer) priorOutputs(ctx context.Context, dir paths.CampaignDir, stage campaign.Specialist) (stagectx.Outputs, error) {
	prev, ok := stage.Previous()
	if !ok {
		return stagectx.Outputs{}, nil
	}
	env, err := s.store.ReadEnvelope(ctx, dir, prev, stage)
	if err != nil {
		return stagectx.Outputs{}, err
	}
	return env.Outputs, nil
}

func buildOutputs(ref campaign.Ref, stage campaign.Specialist, values map[string]any, prior stagectx.Outputs) (stagectx.Outputs, error) {
	switch stage {
	case campaign.SpecialistDataCollection:
		_, merged, err := stagectx.BuildDataCollection(values)
		return merged, err
	case campaign.SpecialistContent:
		_, merged, err := stagectx.BuildContent(ref, values, prior)
		return merged, err
	case campaign.SpecialistDesign:
		_, merged, err := stagectx.BuildDesign(ref, values, prior)
		return merged, err
	case campaign.SpecialistQuality:
		_, merged, err := stagectx.BuildQuality(ref, values, prior)
		return merged, err
	case campaign.SpecialistDelivery:
		_, merged, err := stagectx.BuildDelivery(ref, values, prior)
		return merged, err
	default:
		return stagectx.Outputs{}, services.Wrap(services.ErrOrderingViolation, string(stage), "build outputs",
			fmt.Sprintf("unknown stage %q", stage), nil)
	}
}

func (s *Sequencer) compose(meta campaign.Metadata, dir paths.CampaignDir, stage campaign.Specialist, outputs stagectx.Outputs, report StageReport) *handoff.Envelope {
	completed := meta.Completed.MarkDone(stage)
	workflow := handoff.WorkflowStatus{
		Completed:         completed.CompletedList(),
		Current:           stage,
		Phase:             campaign.PhaseFor(stage),
		CompletionPercent: campaign.CompletionPercent(completed.Count()),
	}
	var to campaign.Specialist
	if next, ok := stage.Next(); ok {
		workflow.Next = &next
		to = next
	} else {
		workflow.Phase = campaign.PhaseCompleted
	}

	return &handoff.Envelope{
		HandoffID:        s.newID(),
		From:             stage,
		To:               to,
		CampaignID:       meta.ID,
		CampaignPath:     dir.String(),
		TraceID:          report.TraceID,
		DataVersion:      s.dataVersion,
		CreatedAt:        s.now(),
		ExecutionSeconds: report.ExecutionSeconds,
		Campaign:         meta.Ref(),
		Outputs:          outputs,
		Workflow:         workflow,
		Deliverables:     report.Deliverables,
		Narrative:        report.Narrative,
		Quality:          report.Quality,
	}
}

func (s *Sequencer) record(meta campaign.Metadata, run index.RunState) index.Record {
	return index.Record{
		CampaignID:        meta.ID,
		Name:              meta.Name,
		Brand:             meta.Brand,
		Type:              meta.Type,
		Status:            meta.Status,
		Phase:             meta.Phase,
		RunState:          run,
		CompletionPercent: meta.CompletionPercent(),
		CreatedAt:         meta.CreatedAt,
	}
}

// fail classifies the error, records the failure against the campaign, and
// returns the original error unchanged so callers can inspect its kind.
func (s *Sequencer) fail(ctx context.Context, logger *slog.Logger, campaignID string, stage campaign.Specialist, err error) error {
	failure := services.NewFailure(string(stage), err)
	logger.Error("stage failed",
		logging.String("kind", string(failure.Kind)),
		logging.Error(err),
	)
	if campaignID != "" {
		if markErr := s.index.MarkFailed(ctx, campaignID, failure); markErr != nil {
			logger.Warn("record failure in index", logging.Error(markErr))
		}
	}
	return err
}
