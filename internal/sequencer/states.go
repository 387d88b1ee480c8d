package sequencer

import (
	"context"

	"loom/internal/campaign"
	"loom/internal/index"
	"loom/internal/paths"
)

// StageState is the derived lifecycle of one pipeline stage.
type StageState string

const (
	StagePending   StageState = "pending"
	StageActive    StageState = "active"
	StageCompleted StageState = "completed"
	StageFailed    StageState = "failed"
)

// StageStatus pairs a stage with its derived state.
type StageStatus struct {
	Stage campaign.Specialist `json:"stage"`
	State StageState          `json:"state"`
}

// Snapshot is a point-in-time view of one campaign's progress.
type Snapshot struct {
	Meta              campaign.Metadata `json:"metadata"`
	Dir               paths.CampaignDir `json:"campaign_dir"`
	Run               index.RunState    `json:"run_state"`
	Stages            []StageStatus     `json:"stages"`
	CompletionPercent int               `json:"completion_percentage"`
	FailureKind       string            `json:"failure_kind,omitempty"`
	FailureMessage    string            `json:"failure_message,omitempty"`
}

// Status derives a campaign snapshot from its metadata and index row. Stage
// states are computed, not stored: completed flags mark stages completed, the
// first incomplete stage is active (or failed, when the run failed), and the
// rest are pending.
func (s *Sequencer) Status(ctx context.Context, campaignPath string) (Snapshot, error) {
	dir := paths.NormalizeCampaignDir(campaignPath)
	meta, err := s.store.ReadMetadata(ctx, dir)
	if err != nil {
		return Snapshot{}, err
	}

	run := index.RunRunning
	var failureKind, failureMessage string
	if rec, err := s.index.Get(ctx, meta.ID); err == nil && rec != nil {
		run = rec.RunState
		failureKind = rec.FailureKind
		failureMessage = rec.FailureMessage
	}
	if meta.Completed.AllDone() {
		run = index.RunCompleted
	}

	snap := Snapshot{
		Meta:              meta,
		Dir:               dir,
		Run:               run,
		CompletionPercent: meta.CompletionPercent(),
		FailureKind:       failureKind,
		FailureMessage:    failureMessage,
	}

	frontier := true
	for _, stage := range campaign.Specialists() {
		state := StagePending
		switch {
		case meta.Completed.Done(stage):
			state = StageCompleted
		case frontier:
			frontier = false
			if run == index.RunFailed {
				state = StageFailed
			} else {
				state = StageActive
			}
		}
		snap.Stages = append(snap.Stages, StageStatus{Stage: stage, State: state})
	}
	return snap, nil
}
