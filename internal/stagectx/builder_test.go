package stagectx

import (
	"errors"
	"testing"

	"loom/internal/campaign"
	"loom/internal/services"
)

func testRef() campaign.Ref {
	return campaign.Ref{
		ID:       "c1",
		Name:     "spring-sale",
		Brand:    "Acme",
		Type:     campaign.TypePromotional,
		Audience: "returning customers",
	}
}

func contentValues() map[string]any {
	return map[string]any{
		"subject": "Spring sale starts now",
		"body":    "Save big this week only.",
		"cta":     "Shop now",
		"pricing_analysis": map[string]any{
			"currency":    "USD",
			"list_price":  99.0,
			"promo_price": 79.0,
		},
		"date_analysis": map[string]any{
			"campaign_start": "2026-03-01",
			"campaign_end":   "2026-03-08",
		},
		"asset_strategy": map[string]any{
			"theme": "spring",
		},
	}
}

func TestBuildContent(t *testing.T) {
	prior := Outputs{DataCollection: &DataCollectionOutput{
		Insights: ConsolidatedInsights{AudienceProfile: "returning customers"},
		Pricing:  PricingAnalysis{Currency: "USD", ListPrice: 99},
		Dates:    DateAnalysis{CampaignStart: "2026-03-01", CampaignEnd: "2026-03-08"},
	}}

	cc, merged, err := BuildContent(testRef(), contentValues(), prior)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cc.Output.Generated.Subject != "Spring sale starts now" {
		t.Fatalf("unexpected subject: %q", cc.Output.Generated.Subject)
	}
	if !merged.Has(campaign.SpecialistDataCollection) || !merged.Has(campaign.SpecialistContent) {
		t.Fatalf("merged outputs incomplete: %v", merged.Keys())
	}
	if !merged.IsSupersetOf(prior) {
		t.Fatal("merged outputs must be a superset of prior outputs")
	}
	// prior value is untouched
	if prior.Content != nil {
		t.Fatal("builder must not mutate the prior outputs")
	}
}

func TestBuildContentEmptySubjectFailsFast(t *testing.T) {
	values := contentValues()
	values["subject"] = ""

	_, _, err := BuildContent(testRef(), values, Outputs{})
	if !errors.Is(err, services.ErrMissingMandatoryField) {
		t.Fatalf("expected missing mandatory field, got %v", err)
	}
	var fieldErr *services.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Path != "generated_content.subject" {
		t.Fatalf("unexpected field path: %v", err)
	}
}

func TestBuildContentWithoutAssetStrategy(t *testing.T) {
	values := contentValues()
	delete(values, "asset_strategy")

	cc, _, err := BuildContent(testRef(), values, Outputs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cc.Output.Assets.isZero() {
		t.Fatalf("expected empty asset strategy, got %+v", cc.Output.Assets)
	}
}

func TestBuildContentAssetStrategyNeedsTheme(t *testing.T) {
	values := contentValues()
	values["asset_strategy"] = map[string]any{"image_count": 3}

	_, _, err := BuildContent(testRef(), values, Outputs{})
	var fieldErr *services.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Path != "asset_strategy.theme" {
		t.Fatalf("expected asset_strategy.theme violation, got %v", err)
	}
}

func TestBuildContentMissingPricingFailsFast(t *testing.T) {
	values := contentValues()
	delete(values, "pricing_analysis")

	_, _, err := BuildContent(testRef(), values, Outputs{})
	if !errors.Is(err, services.ErrMissingMandatoryField) {
		t.Fatalf("expected missing mandatory field, got %v", err)
	}
}

func TestBuildDataCollection(t *testing.T) {
	values := map[string]any{
		"consolidated_insights": map[string]any{"audience_profile": "new signups"},
		"pricing_analysis":      map[string]any{"currency": "USD", "list_price": 49.0},
		"date_analysis":         map[string]any{"campaign_start": "2026-04-01", "campaign_end": "2026-04-10"},
	}
	out, merged, err := BuildDataCollection(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Insights.AudienceProfile != "new signups" {
		t.Fatalf("unexpected insights: %+v", out.Insights)
	}
	if keys := merged.Keys(); len(keys) != 1 || keys[0] != campaign.SpecialistDataCollection {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestBuildDesignRequiresManifest(t *testing.T) {
	_, _, err := BuildDesign(testRef(), map[string]any{
		"compiled_template": map[string]any{"name": "t", "path": "templates/main.html"},
	}, Outputs{})
	var fieldErr *services.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Path != "asset_manifest" {
		t.Fatalf("expected asset_manifest violation, got %v", err)
	}
}

func TestBuildQualityScoreRange(t *testing.T) {
	_, _, err := BuildQuality(testRef(), map[string]any{
		"quality_report":    map[string]any{"overall_score": 140},
		"compliance_status": map[string]any{"can_spam": true, "gdpr": true},
	}, Outputs{})
	var fieldErr *services.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Path != "quality_report.overall_score" {
		t.Fatalf("expected overall_score violation, got %v", err)
	}
}

func TestBuildDelivery(t *testing.T) {
	ctx, merged, err := BuildDelivery(testRef(), map[string]any{
		"delivery_manifest": []any{"exports/final.html"},
		"export_format":     map[string]any{"format": "html"},
		"delivery_report":   map[string]any{"delivered_at": "2026-03-08T12:00:00Z", "destination": "esp"},
	}, Outputs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Output.Export.Format != "html" {
		t.Fatalf("unexpected export format: %+v", ctx.Output.Export)
	}
	if !merged.Has(campaign.SpecialistDelivery) {
		t.Fatal("delivery output missing from merged set")
	}
}
