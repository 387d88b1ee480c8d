package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingMandatoryField = errors.New("missing mandatory field")
	ErrMalformedArtifact     = errors.New("malformed artifact")
	ErrSchemaViolation       = errors.New("schema violation")
	ErrOrderingViolation     = errors.New("ordering violation")
	ErrPersistence           = errors.New("persistence failure")
	ErrConfiguration         = errors.New("configuration error")
)

// Kind names an error classification in failure payloads and logs.
type Kind string

const (
	KindMissingMandatoryField Kind = "missing_mandatory_field"
	KindMalformedArtifact     Kind = "malformed_artifact"
	KindSchemaViolation       Kind = "schema_violation"
	KindOrderingViolation     Kind = "ordering_violation"
	KindPersistence           Kind = "persistence_failure"
	KindConfiguration         Kind = "configuration_error"
	KindUnknown               Kind = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to its taxonomy kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrMissingMandatoryField):
		return KindMissingMandatoryField
	case errors.Is(err, ErrMalformedArtifact):
		return KindMalformedArtifact
	case errors.Is(err, ErrSchemaViolation):
		return KindSchemaViolation
	case errors.Is(err, ErrOrderingViolation):
		return KindOrderingViolation
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

// Fatal reports whether an error halts the current stage. Malformed artifacts
// are recovered during extraction by probing the next candidate source; every
// other classified error stops the pipeline.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrMalformedArtifact)
}

// Failure is the structured payload a failed stage returns to its caller.
type Failure struct {
	Stage      string    `json:"stage"`
	Kind       Kind      `json:"kind"`
	FieldPath  string    `json:"field_path,omitempty"`
	Violations []string  `json:"violations,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewFailure builds a Failure payload from a stage error.
func NewFailure(stage string, err error) Failure {
	f := Failure{
		Stage:      stage,
		Kind:       Classify(err),
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		f.Message = err.Error()
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		f.FieldPath = fieldErr.Path
	}
	var violations *ViolationError
	if errors.As(err, &violations) {
		f.Violations = append(f.Violations, violations.Violations...)
	}
	return f
}

func (f Failure) Error() string {
	return fmt.Sprintf("stage %s failed: %s: %s", f.Stage, f.Kind, f.Message)
}

// FieldError carries the dotted path of a field that could not be produced.
type FieldError struct {
	Path string
	Err  error
}

// NewFieldError tags err (defaulting to ErrMissingMandatoryField) with a
// dotted field path.
func NewFieldError(path string, err error) *FieldError {
	if err == nil {
		err = ErrMissingMandatoryField
	}
	return &FieldError{Path: path, Err: err}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ViolationError carries the complete list of validation violations so a
// retry can fix everything in one pass.
type ViolationError struct {
	Violations []string
	Err        error
}

// NewViolationError tags err (defaulting to ErrSchemaViolation) with the full
// violation list.
func NewViolationError(violations []string, err error) *ViolationError {
	if err == nil {
		err = ErrSchemaViolation
	}
	return &ViolationError{Violations: append([]string(nil), violations...), Err: err}
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Violations, "; "))
}

func (e *ViolationError) Unwrap() error { return e.Err }

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
