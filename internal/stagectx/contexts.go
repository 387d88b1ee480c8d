package stagectx

import (
	"strconv"
	"strings"

	"loom/internal/campaign"
	"loom/internal/services"
)

// ContentContext is the typed view the content stage's tools consume and
// the shape its finalize operation must satisfy.
type ContentContext struct {
	Campaign campaign.Ref  `json:"campaign"`
	Output   ContentOutput `json:"output"`
	Upstream Outputs       `json:"upstream"`
}

// DesignContext is the typed view for the design stage.
type DesignContext struct {
	Campaign campaign.Ref `json:"campaign"`
	Output   DesignOutput `json:"output"`
	Upstream Outputs      `json:"upstream"`
}

// QualityContext is the typed view for the quality stage.
type QualityContext struct {
	Campaign campaign.Ref  `json:"campaign"`
	Output   QualityOutput `json:"output"`
	Upstream Outputs       `json:"upstream"`
}

// DeliveryContext is the typed view for the delivery stage.
type DeliveryContext struct {
	Campaign campaign.Ref   `json:"campaign"`
	Output   DeliveryOutput `json:"output"`
	Upstream Outputs        `json:"upstream"`
}

// Completeness checks. Each stage declares its mandatory fields explicitly
// so fail-fast versus fallback is reviewable policy, not scattered
// conditionals. Violations carry dotted field paths.

func (o DataCollectionOutput) Validate() error {
	if strings.TrimSpace(o.Insights.AudienceProfile) == "" {
		return services.NewFieldError("consolidated_insights.audience_profile", nil)
	}
	if err := o.Pricing.validate("pricing_analysis"); err != nil {
		return err
	}
	return o.Dates.validate("date_analysis")
}

func (o ContentOutput) Validate() error {
	if strings.TrimSpace(o.Generated.Subject) == "" {
		return services.NewFieldError("generated_content.subject", nil)
	}
	if strings.TrimSpace(o.Generated.Body) == "" {
		return services.NewFieldError("generated_content.body", nil)
	}
	if strings.TrimSpace(o.Generated.CTA) == "" {
		return services.NewFieldError("generated_content.cta", nil)
	}
	if err := o.Pricing.validate("pricing_analysis"); err != nil {
		return err
	}
	if err := o.Dates.validate("date_analysis"); err != nil {
		return err
	}
	// The asset strategy is optional: with fallbacks disabled it may be
	// absent entirely. A supplied strategy must name its theme.
	if !o.Assets.isZero() && strings.TrimSpace(o.Assets.Theme) == "" {
		return services.NewFieldError("asset_strategy.theme", nil)
	}
	return nil
}

func (o DesignOutput) Validate() error {
	if len(o.AssetManifest) == 0 {
		return services.NewFieldError("asset_manifest", nil)
	}
	for i, asset := range o.AssetManifest {
		if strings.TrimSpace(asset.Path) == "" {
			return services.NewFieldError(indexedPath("asset_manifest", i, "path"), nil)
		}
	}
	if strings.TrimSpace(o.Template.Path) == "" {
		return services.NewFieldError("compiled_template.path", nil)
	}
	return nil
}

func (o QualityOutput) Validate() error {
	if o.Report.OverallScore < 0 || o.Report.OverallScore > 100 {
		return services.NewFieldError("quality_report.overall_score", nil)
	}
	for category, score := range o.Report.CategoryScores {
		if score < 0 || score > 100 {
			return services.NewFieldError("quality_report.category_scores."+category, nil)
		}
	}
	return nil
}

func (o DeliveryOutput) Validate() error {
	if len(o.ManifestFiles) == 0 {
		return services.NewFieldError("delivery_manifest", nil)
	}
	if strings.TrimSpace(o.Export.Format) == "" {
		return services.NewFieldError("export_format.format", nil)
	}
	if o.Report.DeliveredAt.IsZero() {
		return services.NewFieldError("delivery_report.delivered_at", nil)
	}
	return nil
}

func (p PricingAnalysis) validate(prefix string) error {
	if p.ListPrice <= 0 {
		return services.NewFieldError(prefix+".list_price", nil)
	}
	if p.PromoPrice < 0 {
		return services.NewFieldError(prefix+".promo_price", nil)
	}
	return nil
}

func (d DateAnalysis) validate(prefix string) error {
	if strings.TrimSpace(d.CampaignStart) == "" {
		return services.NewFieldError(prefix+".campaign_start", nil)
	}
	if strings.TrimSpace(d.CampaignEnd) == "" {
		return services.NewFieldError(prefix+".campaign_end", nil)
	}
	return nil
}

func indexedPath(field string, index int, sub string) string {
	return field + "[" + strconv.Itoa(index) + "]." + sub
}
