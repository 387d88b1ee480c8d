package stagectx

import (
	"time"

	"loom/internal/campaign"
)

// ConsolidatedInsights summarizes the research the data-collection stage
// gathered for downstream stages.
type ConsolidatedInsights struct {
	AudienceProfile string   `json:"audience_profile"`
	SeasonalContext string   `json:"seasonal_context,omitempty"`
	Competitors     []string `json:"competitors,omitempty"`
	Notes           []string `json:"notes,omitempty"`
}

// PricingAnalysis carries the offer figures the content stage builds copy from.
type PricingAnalysis struct {
	Currency        string  `json:"currency"`
	ListPrice       float64 `json:"list_price"`
	PromoPrice      float64 `json:"promo_price"`
	DiscountPercent float64 `json:"discount_percent,omitempty"`
	Rationale       string  `json:"rationale,omitempty"`
}

// DateAnalysis carries the campaign's date windows.
type DateAnalysis struct {
	CampaignStart string `json:"campaign_start"`
	CampaignEnd   string `json:"campaign_end"`
	SendDate      string `json:"send_date,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
}

// DataCollectionOutput is everything the data-collection stage produces.
type DataCollectionOutput struct {
	Insights ConsolidatedInsights `json:"consolidated_insights"`
	Pricing  PricingAnalysis      `json:"pricing_analysis"`
	Dates    DateAnalysis         `json:"date_analysis"`
	Sources  []string             `json:"sources,omitempty"`
}

// GeneratedContent is the creative copy the content stage produces.
type GeneratedContent struct {
	Subject   string `json:"subject"`
	Preheader string `json:"preheader,omitempty"`
	Body      string `json:"body"`
	CTA       string `json:"cta"`
}

// AssetStrategy describes the visual direction handed to the design stage.
type AssetStrategy struct {
	Theme      string   `json:"theme"`
	ImageCount int      `json:"image_count,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	Defaulted  bool     `json:"defaulted,omitempty"`
}

func (a AssetStrategy) isZero() bool {
	return a.Theme == "" && a.ImageCount == 0 && len(a.Notes) == 0 && !a.Defaulted
}

// TechnicalRequirements constrains the design output.
type TechnicalRequirements struct {
	MaxWidthPx    int      `json:"max_width_px,omitempty"`
	DarkModeReady bool     `json:"dark_mode_ready,omitempty"`
	TargetClients []string `json:"target_clients,omitempty"`
}

// ContentOutput is everything the content stage produces.
type ContentOutput struct {
	Generated GeneratedContent      `json:"generated_content"`
	Pricing   PricingAnalysis       `json:"pricing_analysis"`
	Dates     DateAnalysis          `json:"date_analysis"`
	Assets    AssetStrategy         `json:"asset_strategy"`
	Technical TechnicalRequirements `json:"technical_requirements,omitempty"`
}

// AssetRecord describes one produced asset file.
type AssetRecord struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Kind  string `json:"kind,omitempty"`
	Bytes int64  `json:"bytes,omitempty"`
}

// CompiledTemplate describes the rendered template artifact.
type CompiledTemplate struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Engine  string `json:"engine,omitempty"`
	Version string `json:"version,omitempty"`
}

// DesignDecision records one design choice and its reason.
type DesignDecision struct {
	Topic  string `json:"topic"`
	Choice string `json:"choice"`
	Reason string `json:"reason,omitempty"`
}

// PerformanceMetrics captures size and load estimates for the compiled output.
type PerformanceMetrics struct {
	HTMLBytes       int64 `json:"html_bytes,omitempty"`
	ImageBytes      int64 `json:"image_bytes,omitempty"`
	EstimatedLoadMs int   `json:"estimated_load_ms,omitempty"`
}

// DesignOutput is everything the design stage produces.
type DesignOutput struct {
	AssetManifest []AssetRecord      `json:"asset_manifest"`
	Template      CompiledTemplate   `json:"compiled_template"`
	Decisions     []DesignDecision   `json:"design_decisions,omitempty"`
	PreviewFiles  []string           `json:"preview_files,omitempty"`
	Performance   PerformanceMetrics `json:"performance_metrics,omitempty"`
}

// ClientResult is one email client's render test outcome.
type ClientResult struct {
	Client string `json:"client"`
	Passed bool   `json:"passed"`
	Notes  string `json:"notes,omitempty"`
}

// QualityReport aggregates the quality stage's scoring.
type QualityReport struct {
	OverallScore   int            `json:"overall_score"`
	CategoryScores map[string]int `json:"category_scores,omitempty"`
	ClientResults  []ClientResult `json:"client_results,omitempty"`
}

// ComplianceStatus records regulatory checks.
type ComplianceStatus struct {
	CANSPAM bool     `json:"can_spam"`
	GDPR    bool     `json:"gdpr"`
	Notes   []string `json:"notes,omitempty"`
}

// QualityOutput is everything the quality stage produces.
type QualityOutput struct {
	Report        QualityReport    `json:"quality_report"`
	TestArtifacts []string         `json:"test_artifacts,omitempty"`
	Compliance    ComplianceStatus `json:"compliance_status"`
}

// ExportFormat describes the delivery packaging.
type ExportFormat struct {
	Format   string `json:"format"`
	Minified bool   `json:"minified,omitempty"`
}

// DeliveryReport records the final handover.
type DeliveryReport struct {
	DeliveredAt time.Time `json:"delivered_at"`
	Destination string    `json:"destination,omitempty"`
}

// DeliveryOutput is everything the delivery stage produces.
type DeliveryOutput struct {
	ManifestFiles       []string       `json:"delivery_manifest"`
	Export              ExportFormat   `json:"export_format"`
	Report              DeliveryReport `json:"delivery_report"`
	DeploymentArtifacts []string       `json:"deployment_artifacts,omitempty"`
}

// Outputs is the cumulative specialist-outputs set carried by envelopes.
// One optional slot per stage; a later envelope's set is always a superset
// of an earlier one's for the same campaign.
type Outputs struct {
	DataCollection *DataCollectionOutput `json:"data-collection,omitempty"`
	Content        *ContentOutput        `json:"content,omitempty"`
	Design         *DesignOutput         `json:"design,omitempty"`
	Quality        *QualityOutput        `json:"quality,omitempty"`
	Delivery       *DeliveryOutput       `json:"delivery,omitempty"`
}

// Keys returns the populated stages in pipeline order.
func (o Outputs) Keys() []campaign.Specialist {
	var keys []campaign.Specialist
	for _, s := range campaign.Specialists() {
		if o.Has(s) {
			keys = append(keys, s)
		}
	}
	return keys
}

// Has reports whether the given stage's output is present.
func (o Outputs) Has(s campaign.Specialist) bool {
	switch s {
	case campaign.SpecialistDataCollection:
		return o.DataCollection != nil
	case campaign.SpecialistContent:
		return o.Content != nil
	case campaign.SpecialistDesign:
		return o.Design != nil
	case campaign.SpecialistQuality:
		return o.Quality != nil
	case campaign.SpecialistDelivery:
		return o.Delivery != nil
	default:
		return false
	}
}

// IsSupersetOf reports whether every stage populated in other is also
// populated in o.
func (o Outputs) IsSupersetOf(other Outputs) bool {
	for _, s := range other.Keys() {
		if !o.Has(s) {
			return false
		}
	}
	return true
}
