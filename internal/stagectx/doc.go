// Package stagectx holds the typed per-stage output structures, the
// cumulative specialist-outputs set carried by handoff envelopes, and the
// builders that turn a stage's extracted raw output into a typed
// StageContext. Untyped data never crosses a stage boundary: everything a
// stage emits passes through a builder and a completeness check first.
package stagectx
