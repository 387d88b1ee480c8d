// Package logging builds the slog loggers used across the pipeline.
//
// It provides a console handler for interactive use, a JSON handler for
// machine consumption, attribute helpers, and the standardized field keys
// (component, campaign_id, stage, correlation_id) that keep handoff and
// extraction diagnostics greppable.
package logging
