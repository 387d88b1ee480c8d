// Package handoff defines the envelope exchanged between adjacent pipeline
// stages and the validator that gates every transition.
//
// Envelopes are immutable once written: each stage transition produces a new
// envelope file rather than editing a prior one, which is what makes the
// specialist-outputs superset invariant mechanically checkable. The
// validator returns the complete violation list so a retry can fix
// everything in one pass; a rejected envelope is never persisted.
package handoff
