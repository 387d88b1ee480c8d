package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"loom/internal/campaign"
	"loom/internal/logging"
	"loom/internal/paths"
	"loom/internal/services"
)

// Policy controls fallback behavior for non-mandatory fields.
type Policy struct {
	FallbacksEnabled  bool
	DefaultAssetTheme string
}

// Resolution records which source satisfied a field, for audit and tests.
type Resolution struct {
	Field  string `json:"field"`
	Source string `json:"source"`
}

// Result carries the normalized values and their provenance.
type Result struct {
	Values      map[string]any
	Resolutions []Resolution
}

// Source returns the source name that satisfied the given field, if any.
func (r Result) Source(field string) (string, bool) {
	for _, res := range r.Resolutions {
		if res.Field == field {
			return res.Source, true
		}
	}
	return "", false
}

// Extractor normalizes raw stage output against declared field specs.
type Extractor struct {
	policy Policy
	logger *slog.Logger
}

// New constructs an Extractor.
func New(policy Policy, logger *slog.Logger) *Extractor {
	return &Extractor{policy: policy, logger: logging.NewComponentLogger(logger, "extract")}
}

// Run resolves every declared field for the stage. Read-only on the
// campaign directory.
func (e *Extractor) Run(ctx context.Context, stage campaign.Specialist, raw map[string]any, dir paths.CampaignDir) (Result, error) {
	specs, ok := stageFields(stage)
	if !ok {
		return Result{}, services.Wrap(services.ErrConfiguration, string(stage), "extract", "no field specs declared for stage", nil)
	}

	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldStage, string(stage)))
	result := Result{Values: make(map[string]any, len(specs))}

	for _, spec := range specs {
		value, source, found := e.resolve(logger, spec, raw, dir)
		if found {
			result.Values[spec.Name] = value
			result.Resolutions = append(result.Resolutions, Resolution{Field: spec.Name, Source: source})
			logger.Debug("field resolved",
				logging.String("field", spec.Name),
				logging.String(logging.FieldSource, source),
			)
			continue
		}
		if spec.Mandatory {
			logger.Error("mandatory field unresolved",
				logging.String("field", spec.Name),
				logging.Int("sources_probed", len(spec.sources())),
			)
			return Result{}, services.NewFieldError(spec.Name, nil)
		}
		if fallback, ok := e.fallbackFor(spec); ok {
			result.Values[spec.Name] = fallback
			result.Resolutions = append(result.Resolutions, Resolution{Field: spec.Name, Source: sourceFallback})
			logger.Warn("field defaulted",
				logging.String("field", spec.Name),
				logging.String(logging.FieldSource, sourceFallback),
			)
		}
	}
	return result, nil
}

const sourceFallback = "fallback"

func (e *Extractor) resolve(logger *slog.Logger, spec FieldSpec, raw map[string]any, dir paths.CampaignDir) (any, string, bool) {
	for _, key := range spec.BagKeys {
		if value, ok := lookupPath(raw, key); ok && spec.Kind.valid(value) {
			return value, "raw_output." + key, true
		}
	}
	for _, probe := range spec.Artifacts {
		value, ok, err := e.probeArtifact(probe, dir)
		if err != nil {
			// Malformed artifact: treated as absent, keep probing.
			logger.Warn("artifact probe failed",
				logging.String("field", spec.Name),
				logging.String("artifact", probe.Rel),
				logging.Error(err),
			)
			continue
		}
		if ok && spec.Kind.valid(value) {
			return value, "artifact." + probe.Rel + probe.pathSuffix(), true
		}
	}
	return nil, "", false
}

func (e *Extractor) probeArtifact(probe ArtifactProbe, dir paths.CampaignDir) (any, bool, error) {
	raw, err := os.ReadFile(dir.Artifact(probe.Rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, services.Wrap(services.ErrMalformedArtifact, "", "read artifact", probe.Rel, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, services.Wrap(services.ErrMalformedArtifact, "", "parse artifact", probe.Rel, err)
	}
	if probe.Path == "" {
		return doc, true, nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false, services.Wrap(services.ErrMalformedArtifact, "", "parse artifact",
			fmt.Sprintf("%s: expected a JSON object", probe.Rel), nil)
	}
	value, ok := lookupPath(obj, probe.Path)
	return value, ok, nil
}

func (e *Extractor) fallbackFor(spec FieldSpec) (any, bool) {
	if !e.policy.FallbacksEnabled || spec.Fallback == nil {
		return nil, false
	}
	return spec.Fallback(e.policy), true
}

// lookupPath walks a dotted path through nested JSON objects.
func lookupPath(obj map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = obj
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
