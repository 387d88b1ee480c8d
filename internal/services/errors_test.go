package services

import (
	"errors"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	err := Wrap(ErrOrderingViolation, "content", "finalize", "design before quality", nil)
	if !errors.Is(err, ErrOrderingViolation) {
		t.Fatalf("expected ordering violation marker, got %v", err)
	}
	if Classify(err) != KindOrderingViolation {
		t.Fatalf("unexpected kind: %s", Classify(err))
	}
}

func TestWrapNilMarkerDefaultsToPersistence(t *testing.T) {
	err := Wrap(nil, "delivery", "write envelope", "", errors.New("disk full"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence marker, got %v", err)
	}
}

func TestFatal(t *testing.T) {
	if Fatal(Wrap(ErrMalformedArtifact, "content", "probe", "bad json", nil)) {
		t.Fatal("malformed artifact must be recoverable")
	}
	if !Fatal(NewFieldError("generated_content.subject", nil)) {
		t.Fatal("missing mandatory field must be fatal")
	}
}

func TestNewFailureFieldPath(t *testing.T) {
	err := NewFieldError("pricing_analysis.list_price", nil)
	failure := NewFailure("content", err)
	if failure.Kind != KindMissingMandatoryField {
		t.Fatalf("unexpected kind: %s", failure.Kind)
	}
	if failure.FieldPath != "pricing_analysis.list_price" {
		t.Fatalf("unexpected field path: %q", failure.FieldPath)
	}
	if failure.OccurredAt.IsZero() {
		t.Fatal("expected timestamp")
	}
}

func TestNewFailureViolations(t *testing.T) {
	err := NewViolationError([]string{"workflow_status.completion_percentage: out of range", "quality_metadata.validation_status: unknown value"}, nil)
	failure := NewFailure("design", err)
	if failure.Kind != KindSchemaViolation {
		t.Fatalf("unexpected kind: %s", failure.Kind)
	}
	if len(failure.Violations) != 2 {
		t.Fatalf("expected full violation list, got %d", len(failure.Violations))
	}
}
