// Package sequencer coordinates the fixed five-stage pipeline. Each stage
// completion flows through the same path: admission against strict pipeline
// order, extraction of the stage's raw output, typed context building on top
// of the predecessor's accumulated outputs, envelope validation, atomic
// persistence, and a metadata plus index advance. Failures stop the campaign
// in place; there is no retry or rollback.
package sequencer
