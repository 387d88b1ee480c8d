package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loom/internal/campaign"
	"loom/internal/handoff"
	"loom/internal/logging"
	"loom/internal/paths"
	"loom/internal/services"
	"loom/internal/testsupport"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return New(cfg, logging.NewNop())
}

func testMetadata() campaign.Metadata {
	return campaign.Metadata{
		ID:        "spring-sale-2026",
		Name:      "spring sale",
		Brand:     "acme",
		Type:      campaign.TypePromotional,
		Audience:  "returning customers",
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Phase:     campaign.PhaseDataCollection,
		Status:    campaign.StatusActive,
	}
}

func TestBootstrapCreatesSubtree(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	for _, sub := range paths.ContentDirNames {
		info, err := os.Stat(dir.Artifact(sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("missing subdirectory %q: %v", sub, err)
		}
	}
	if _, err := os.Stat(dir.HandoffDir()); err != nil {
		t.Fatalf("missing handoffs directory: %v", err)
	}
	if _, err := os.Stat(dir.Metadata()); err != nil {
		t.Fatalf("missing metadata file: %v", err)
	}
	readme, err := os.ReadFile(dir.Artifact("README.md"))
	if err != nil {
		t.Fatalf("missing README: %v", err)
	}
	if !strings.HasPrefix(string(readme), "# Spring Sale") {
		t.Fatalf("unexpected README title: %q", strings.SplitN(string(readme), "\n", 2)[0])
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	s := testStore(t)
	meta := testMetadata()
	dir, err := s.Bootstrap(context.Background(), meta)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Advance the metadata, then bootstrap again: nothing may be reset.
	if _, err := s.UpdateMetadata(context.Background(), dir, func(m *campaign.Metadata) error {
		m.Completed = m.Completed.MarkDone(campaign.SpecialistDataCollection)
		m.Phase = campaign.PhaseContent
		return nil
	}); err != nil {
		t.Fatalf("update metadata: %v", err)
	}
	if _, err := s.Bootstrap(context.Background(), meta); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	got, err := s.ReadMetadata(context.Background(), dir)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if !got.Completed.Done(campaign.SpecialistDataCollection) || got.Phase != campaign.PhaseContent {
		t.Fatalf("bootstrap overwrote metadata: %+v", got)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	next := campaign.SpecialistDesign
	env := &handoff.Envelope{
		HandoffID:   "h-42",
		From:        campaign.SpecialistContent,
		To:          campaign.SpecialistDesign,
		CampaignID:  "spring-sale-2026",
		DataVersion: "1.0",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Workflow: handoff.WorkflowStatus{
			Current: campaign.SpecialistContent,
			Next:    &next,
			Phase:   campaign.PhaseContent,
		},
	}
	file, err := s.WriteEnvelope(context.Background(), dir, env)
	if err != nil {
		t.Fatalf("write envelope: %v", err)
	}
	if filepath.Base(file.String()) != "content-to-design.json" {
		t.Fatalf("unexpected envelope file name: %s", file)
	}

	got, err := s.ReadEnvelope(context.Background(), dir, campaign.SpecialistContent, campaign.SpecialistDesign)
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if got.HandoffID != env.HandoffID || got.Workflow.Next == nil || *got.Workflow.Next != next {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestReadEnvelopeLegacyAlias(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	env := &handoff.Envelope{HandoffID: "legacy-1", From: campaign.SpecialistContent, To: campaign.SpecialistDesign}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	legacy := dir.LegacyHandoff(campaign.SpecialistContent, campaign.SpecialistDesign)
	if err := os.WriteFile(legacy.String(), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadEnvelope(context.Background(), dir, campaign.SpecialistContent, campaign.SpecialistDesign)
	if err != nil {
		t.Fatalf("read via alias: %v", err)
	}
	if got.HandoffID != "legacy-1" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestTerminalRecordFileName(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	env := &handoff.Envelope{HandoffID: "h-end", From: campaign.SpecialistDelivery}
	file, err := s.WriteEnvelope(context.Background(), dir, env)
	if err != nil {
		t.Fatalf("write terminal record: %v", err)
	}
	if filepath.Base(file.String()) != paths.TerminalHandoffFileName {
		t.Fatalf("unexpected terminal file name: %s", file)
	}
	if _, err := s.ReadTerminalRecord(context.Background(), dir); err != nil {
		t.Fatalf("read terminal record: %v", err)
	}
}

func TestUpdateMetadataPreservesUnknownKeys(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Simulate another tool adding a key the typed model does not know.
	raw, err := os.ReadFile(dir.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	doc["external_tracking_id"] = "trk-9001"
	raw, err = json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.Metadata(), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.UpdateMetadata(context.Background(), dir, func(m *campaign.Metadata) error {
		m.Completed = m.Completed.MarkDone(campaign.SpecialistDataCollection)
		return nil
	}); err != nil {
		t.Fatalf("update metadata: %v", err)
	}

	raw, err = os.ReadFile(dir.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	var updated map[string]any
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatal(err)
	}
	if updated["external_tracking_id"] != "trk-9001" {
		t.Fatalf("unknown key lost: %v", updated)
	}
	flags, ok := updated["specialists_completed"].(map[string]any)
	if !ok || flags["data-collection"] != true {
		t.Fatalf("typed update lost: %v", updated["specialists_completed"])
	}
}

func TestUpdateMetadataRejectsNullDocument(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := os.WriteFile(dir.Metadata(), []byte("null\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = s.UpdateMetadata(context.Background(), dir, func(m *campaign.Metadata) error {
		m.Status = campaign.StatusArchived
		return nil
	})
	if !errors.Is(err, services.ErrMalformedArtifact) {
		t.Fatalf("expected malformed artifact error, got %v", err)
	}
}

func TestUpdateMetadataRollsBackOnCallbackError(t *testing.T) {
	s := testStore(t)
	dir, err := s.Bootstrap(context.Background(), testMetadata())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	before, err := os.ReadFile(dir.Metadata())
	if err != nil {
		t.Fatal(err)
	}

	wantErr := os.ErrInvalid
	if _, err := s.UpdateMetadata(context.Background(), dir, func(m *campaign.Metadata) error {
		m.Status = campaign.StatusArchived
		return wantErr
	}); err == nil {
		t.Fatal("expected callback error to propagate")
	}

	after, err := os.ReadFile(dir.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("metadata changed despite callback error")
	}
}
