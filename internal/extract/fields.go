package extract

import (
	"strings"

	"loom/internal/campaign"
)

// Kind is the structural shape a field value must take to count as found.
type Kind int

const (
	KindString Kind = iota
	KindObject
	KindList
)

func (k Kind) valid(value any) bool {
	switch k {
	case KindString:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	case KindObject:
		m, ok := value.(map[string]any)
		return ok && len(m) > 0
	case KindList:
		switch v := value.(type) {
		case []any:
			return len(v) > 0
		case []string:
			return len(v) > 0
		default:
			return false
		}
	default:
		return false
	}
}

// ArtifactProbe names one secondary file location. Path is a dotted path
// inside the file; empty means the whole document.
type ArtifactProbe struct {
	Rel  string
	Path string
}

func (p ArtifactProbe) pathSuffix() string {
	if p.Path == "" {
		return ""
	}
	return "#" + p.Path
}

// FieldSpec declares one datum a stage needs and where to look for it, in
// probing order: bag keys first, then artifact files.
type FieldSpec struct {
	Name      string
	Mandatory bool
	Kind      Kind
	BagKeys   []string
	Artifacts []ArtifactProbe
	// Fallback supplies the documented default for non-mandatory fields.
	Fallback func(Policy) any
}

func (s FieldSpec) sources() []string {
	out := make([]string, 0, len(s.BagKeys)+len(s.Artifacts))
	for _, key := range s.BagKeys {
		out = append(out, "raw_output."+key)
	}
	for _, probe := range s.Artifacts {
		out = append(out, "artifact."+probe.Rel+probe.pathSuffix())
	}
	return out
}

func defaultAssetStrategy(policy Policy) any {
	return map[string]any{
		"theme":     policy.DefaultAssetTheme,
		"defaulted": true,
	}
}

var fieldsByStage = map[campaign.Specialist][]FieldSpec{
	campaign.SpecialistDataCollection: {
		{
			Name: "consolidated_insights", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"consolidated_insights", "insights"},
			Artifacts: []ArtifactProbe{
				{Rel: "data/consolidated-insights.json"},
			},
		},
		{
			Name: "pricing_analysis", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"pricing_analysis", "pricing"},
			Artifacts: []ArtifactProbe{
				{Rel: "data/pricing-analysis.json"},
				{Rel: "data/consolidated-insights.json", Path: "pricing"},
			},
		},
		{
			Name: "date_analysis", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"date_analysis", "dates"},
			Artifacts: []ArtifactProbe{
				{Rel: "data/date-analysis.json"},
				{Rel: "data/consolidated-insights.json", Path: "dates"},
			},
		},
		{
			Name: "sources", Mandatory: false, Kind: KindList,
			BagKeys: []string{"sources"},
		},
	},
	campaign.SpecialistContent: {
		{
			Name: "subject", Mandatory: true, Kind: KindString,
			BagKeys: []string{"subject", "generated_content.subject"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/email-content.json", Path: "subject"},
			},
		},
		{
			Name: "preheader", Mandatory: false, Kind: KindString,
			BagKeys: []string{"preheader", "generated_content.preheader"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/email-content.json", Path: "preheader"},
			},
		},
		{
			Name: "body", Mandatory: true, Kind: KindString,
			BagKeys: []string{"body", "generated_content.body"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/email-content.json", Path: "body"},
			},
		},
		{
			Name: "cta", Mandatory: true, Kind: KindString,
			BagKeys: []string{"cta", "generated_content.cta"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/email-content.json", Path: "cta"},
			},
		},
		{
			Name: "pricing_analysis", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"pricing_analysis", "pricing"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/content-analysis.json", Path: "pricing_analysis"},
				{Rel: "data/consolidated-insights.json", Path: "pricing"},
			},
		},
		{
			Name: "date_analysis", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"date_analysis", "dates"},
			Artifacts: []ArtifactProbe{
				{Rel: "content/content-analysis.json", Path: "date_analysis"},
				{Rel: "data/consolidated-insights.json", Path: "dates"},
			},
		},
		{
			Name: "asset_strategy", Mandatory: false, Kind: KindObject,
			BagKeys: []string{"asset_strategy", "visual_strategy"},
			Artifacts: []ArtifactProbe{
				{Rel: "data/consolidated-insights.json", Path: "asset_strategy"},
			},
			Fallback: defaultAssetStrategy,
		},
		{
			Name: "technical_requirements", Mandatory: false, Kind: KindObject,
			BagKeys: []string{"technical_requirements"},
		},
	},
	campaign.SpecialistDesign: {
		{
			Name: "asset_manifest", Mandatory: true, Kind: KindList,
			BagKeys: []string{"asset_manifest", "assets"},
			Artifacts: []ArtifactProbe{
				{Rel: "assets/asset-manifest.json", Path: "assets"},
				{Rel: "assets/asset-manifest.json"},
			},
		},
		{
			Name: "compiled_template", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"compiled_template", "template"},
			Artifacts: []ArtifactProbe{
				{Rel: "templates/compiled-template.json"},
			},
		},
		{
			Name: "design_decisions", Mandatory: false, Kind: KindList,
			BagKeys: []string{"design_decisions"},
		},
		{
			Name: "preview_files", Mandatory: false, Kind: KindList,
			BagKeys: []string{"preview_files", "previews"},
		},
		{
			Name: "performance_metrics", Mandatory: false, Kind: KindObject,
			BagKeys: []string{"performance_metrics"},
		},
	},
	campaign.SpecialistQuality: {
		{
			Name: "quality_report", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"quality_report", "report"},
			Artifacts: []ArtifactProbe{
				{Rel: "docs/quality-report.json"},
			},
		},
		{
			Name: "test_artifacts", Mandatory: false, Kind: KindList,
			BagKeys: []string{"test_artifacts"},
		},
		{
			Name: "compliance_status", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"compliance_status", "compliance"},
			Artifacts: []ArtifactProbe{
				{Rel: "docs/compliance.json"},
				{Rel: "docs/quality-report.json", Path: "compliance"},
			},
		},
	},
	campaign.SpecialistDelivery: {
		{
			Name: "delivery_manifest", Mandatory: true, Kind: KindList,
			BagKeys: []string{"delivery_manifest", "manifest"},
			Artifacts: []ArtifactProbe{
				{Rel: "exports/delivery-manifest.json", Path: "files"},
				{Rel: "exports/delivery-manifest.json"},
			},
		},
		{
			Name: "export_format", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"export_format"},
			Artifacts: []ArtifactProbe{
				{Rel: "exports/export-format.json"},
			},
		},
		{
			Name: "delivery_report", Mandatory: true, Kind: KindObject,
			BagKeys: []string{"delivery_report"},
			Artifacts: []ArtifactProbe{
				{Rel: "exports/delivery-report.json"},
			},
		},
		{
			Name: "deployment_artifacts", Mandatory: false, Kind: KindList,
			BagKeys: []string{"deployment_artifacts"},
		},
	},
}

func stageFields(stage campaign.Specialist) ([]FieldSpec, bool) {
	specs, ok := fieldsByStage[stage]
	return specs, ok
}

// MandatoryFields returns the declared mandatory datum names for a stage.
func MandatoryFields(stage campaign.Specialist) []string {
	specs, _ := stageFields(stage)
	var out []string
	for _, spec := range specs {
		if spec.Mandatory {
			out = append(out, spec.Name)
		}
	}
	return out
}
