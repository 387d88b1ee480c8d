package extract

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"loom/internal/campaign"
	"loom/internal/logging"
	"loom/internal/paths"
	"loom/internal/services"
)

func testPolicy() Policy {
	return Policy{FallbacksEnabled: true, DefaultAssetTheme: "seasonal-promotional"}
}

func campaignDir(t *testing.T) paths.CampaignDir {
	t.Helper()
	dir := paths.CampaignDir(t.TempDir())
	for _, sub := range paths.ContentDirNames {
		if err := os.MkdirAll(dir.Artifact(sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeArtifact(t *testing.T, dir paths.CampaignDir, rel string, doc any) {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := dir.Artifact(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fullContentBag() map[string]any {
	return map[string]any{
		"subject":          "Spring sale",
		"body":             "Save now",
		"cta":              "Shop",
		"pricing_analysis": map[string]any{"currency": "USD", "list_price": 99.0},
		"date_analysis":    map[string]any{"campaign_start": "2026-03-01", "campaign_end": "2026-03-08"},
	}
}

func TestRunResolvesFromBag(t *testing.T) {
	e := New(testPolicy(), logging.NewNop())
	result, err := e.Run(context.Background(), campaign.SpecialistContent, fullContentBag(), campaignDir(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Values["subject"] != "Spring sale" {
		t.Fatalf("unexpected subject: %v", result.Values["subject"])
	}
	source, ok := result.Source("subject")
	if !ok || source != "raw_output.subject" {
		t.Fatalf("unexpected source: %q", source)
	}
}

func TestRunFallbackOrdering(t *testing.T) {
	// pricing_analysis is absent from the bag; the first candidate file is
	// malformed, the second holds a valid pricing object. The second file's
	// value must win and the resolution must say so.
	dir := campaignDir(t)
	if err := os.WriteFile(dir.Artifact("content/content-analysis.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeArtifact(t, dir, "data/consolidated-insights.json", map[string]any{
		"pricing": map[string]any{"currency": "USD", "list_price": 59.0},
		"dates":   map[string]any{"campaign_start": "2026-03-01", "campaign_end": "2026-03-08"},
	})

	bag := fullContentBag()
	delete(bag, "pricing_analysis")
	delete(bag, "date_analysis")

	e := New(testPolicy(), logging.NewNop())
	result, err := e.Run(context.Background(), campaign.SpecialistContent, bag, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pricing, ok := result.Values["pricing_analysis"].(map[string]any)
	if !ok || pricing["list_price"] != 59.0 {
		t.Fatalf("unexpected pricing: %v", result.Values["pricing_analysis"])
	}
	source, _ := result.Source("pricing_analysis")
	if source != "artifact.data/consolidated-insights.json#pricing" {
		t.Fatalf("unexpected source: %q", source)
	}
}

func TestRunMandatoryFieldMissingFailsFast(t *testing.T) {
	bag := fullContentBag()
	bag["subject"] = "" // empty string is not structurally valid

	e := New(testPolicy(), logging.NewNop())
	_, err := e.Run(context.Background(), campaign.SpecialistContent, bag, campaignDir(t))
	if !errors.Is(err, services.ErrMissingMandatoryField) {
		t.Fatalf("expected missing mandatory field, got %v", err)
	}
	var fieldErr *services.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Path != "subject" {
		t.Fatalf("unexpected field path: %v", err)
	}
}

func TestRunOptionalFieldDefaulted(t *testing.T) {
	e := New(testPolicy(), logging.NewNop())
	result, err := e.Run(context.Background(), campaign.SpecialistContent, fullContentBag(), campaignDir(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strategy, ok := result.Values["asset_strategy"].(map[string]any)
	if !ok {
		t.Fatalf("expected defaulted asset strategy, got %v", result.Values["asset_strategy"])
	}
	if strategy["theme"] != "seasonal-promotional" || strategy["defaulted"] != true {
		t.Fatalf("unexpected default: %v", strategy)
	}
	if source, _ := result.Source("asset_strategy"); source != "fallback" {
		t.Fatalf("unexpected source: %q", source)
	}
}

func TestRunFallbacksDisabled(t *testing.T) {
	e := New(Policy{FallbacksEnabled: false}, logging.NewNop())
	result, err := e.Run(context.Background(), campaign.SpecialistContent, fullContentBag(), campaignDir(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.Values["asset_strategy"]; ok {
		t.Fatal("asset strategy must not be defaulted when fallbacks are disabled")
	}
}

func TestMandatoryFieldsDeclared(t *testing.T) {
	fields := MandatoryFields(campaign.SpecialistContent)
	want := map[string]bool{"subject": true, "body": true, "cta": true, "pricing_analysis": true, "date_analysis": true}
	if len(fields) != len(want) {
		t.Fatalf("unexpected mandatory list: %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Fatalf("unexpected mandatory field %q", f)
		}
	}
}
