// Package services defines the shared error taxonomy for the pipeline.
//
// Key responsibilities:
//   - Sentinel markers that classify stage failures (missing mandatory
//     field, malformed artifact, schema violation, ordering violation,
//     persistence failure).
//   - The Wrap helper that tags errors with stage and operation context
//     while preserving the marker for errors.Is classification.
//   - The Failure payload returned to invoking collaborators so a failed
//     stage surfaces actionable diagnostics instead of a bare error string.
package services
