package stagectx

import (
	"encoding/json"
	"fmt"

	"loom/internal/campaign"
	"loom/internal/services"
)

// Builders combine a stage's extracted values with the accumulated upstream
// outputs. They are pure: the prior Outputs value is copied, never mutated,
// and the same inputs always produce the same result.

// BuildDataCollection assembles the first stage's output. There is no prior
// envelope, so the accumulated set starts empty.
func BuildDataCollection(values map[string]any) (DataCollectionOutput, Outputs, error) {
	var out DataCollectionOutput
	if err := decodeInto(values, "consolidated_insights", true, &out.Insights); err != nil {
		return DataCollectionOutput{}, Outputs{}, err
	}
	if err := decodeInto(values, "pricing_analysis", true, &out.Pricing); err != nil {
		return DataCollectionOutput{}, Outputs{}, err
	}
	if err := decodeInto(values, "date_analysis", true, &out.Dates); err != nil {
		return DataCollectionOutput{}, Outputs{}, err
	}
	if err := decodeInto(values, "sources", false, &out.Sources); err != nil {
		return DataCollectionOutput{}, Outputs{}, err
	}
	if err := out.Validate(); err != nil {
		return DataCollectionOutput{}, Outputs{}, err
	}
	return out, Outputs{DataCollection: &out}, nil
}

// BuildContent assembles the content stage's context from extracted values
// and the data-collection envelope's accumulated outputs.
func BuildContent(ref campaign.Ref, values map[string]any, prior Outputs) (ContentContext, Outputs, error) {
	var out ContentOutput
	if err := decodeString(values, "subject", true, &out.Generated.Subject); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeString(values, "preheader", false, &out.Generated.Preheader); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeString(values, "body", true, &out.Generated.Body); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeString(values, "cta", true, &out.Generated.CTA); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "pricing_analysis", true, &out.Pricing); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "date_analysis", true, &out.Dates); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "asset_strategy", false, &out.Assets); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "technical_requirements", false, &out.Technical); err != nil {
		return ContentContext{}, Outputs{}, err
	}
	if err := out.Validate(); err != nil {
		return ContentContext{}, Outputs{}, err
	}

	merged := prior
	merged.Content = &out
	return ContentContext{Campaign: ref, Output: out, Upstream: prior}, merged, nil
}

// BuildDesign assembles the design stage's context.
func BuildDesign(ref campaign.Ref, values map[string]any, prior Outputs) (DesignContext, Outputs, error) {
	var out DesignOutput
	if err := decodeInto(values, "asset_manifest", true, &out.AssetManifest); err != nil {
		return DesignContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "compiled_template", true, &out.Template); err != nil {
		return DesignContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "design_decisions", false, &out.Decisions); err != nil {
		return DesignContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "preview_files", false, &out.PreviewFiles); err != nil {
		return DesignContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "performance_metrics", false, &out.Performance); err != nil {
		return DesignContext{}, Outputs{}, err
	}
	if err := out.Validate(); err != nil {
		return DesignContext{}, Outputs{}, err
	}

	merged := prior
	merged.Design = &out
	return DesignContext{Campaign: ref, Output: out, Upstream: prior}, merged, nil
}

// BuildQuality assembles the quality stage's context.
func BuildQuality(ref campaign.Ref, values map[string]any, prior Outputs) (QualityContext, Outputs, error) {
	var out QualityOutput
	if err := decodeInto(values, "quality_report", true, &out.Report); err != nil {
		return QualityContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "test_artifacts", false, &out.TestArtifacts); err != nil {
		return QualityContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "compliance_status", true, &out.Compliance); err != nil {
		return QualityContext{}, Outputs{}, err
	}
	if err := out.Validate(); err != nil {
		return QualityContext{}, Outputs{}, err
	}

	merged := prior
	merged.Quality = &out
	return QualityContext{Campaign: ref, Output: out, Upstream: prior}, merged, nil
}

// BuildDelivery assembles the delivery stage's context.
func BuildDelivery(ref campaign.Ref, values map[string]any, prior Outputs) (DeliveryContext, Outputs, error) {
	var out DeliveryOutput
	if err := decodeInto(values, "delivery_manifest", true, &out.ManifestFiles); err != nil {
		return DeliveryContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "export_format", true, &out.Export); err != nil {
		return DeliveryContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "delivery_report", true, &out.Report); err != nil {
		return DeliveryContext{}, Outputs{}, err
	}
	if err := decodeInto(values, "deployment_artifacts", false, &out.DeploymentArtifacts); err != nil {
		return DeliveryContext{}, Outputs{}, err
	}
	if err := out.Validate(); err != nil {
		return DeliveryContext{}, Outputs{}, err
	}

	merged := prior
	merged.Delivery = &out
	return DeliveryContext{Campaign: ref, Output: out, Upstream: prior}, merged, nil
}

// decodeInto converts an extracted value into its typed shape via a JSON
// round trip. A value that cannot take the expected shape counts as missing:
// by the time a builder runs, fallback probing is over, so a mandatory
// decode failure fails the stage.
func decodeInto(values map[string]any, field string, mandatory bool, dst any) error {
	value, ok := values[field]
	if !ok || value == nil {
		if mandatory {
			return services.NewFieldError(field, nil)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return services.NewFieldError(field, fmt.Errorf("%w: encode: %w", services.ErrMissingMandatoryField, err))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if mandatory {
			return services.NewFieldError(field, fmt.Errorf("%w: decode: %w", services.ErrMissingMandatoryField, err))
		}
		return nil
	}
	return nil
}

func decodeString(values map[string]any, field string, mandatory bool, dst *string) error {
	value, ok := values[field]
	if !ok || value == nil {
		if mandatory {
			return services.NewFieldError(field, nil)
		}
		return nil
	}
	s, ok := value.(string)
	if !ok {
		if mandatory {
			return services.NewFieldError(field, nil)
		}
		return nil
	}
	*dst = s
	return nil
}
