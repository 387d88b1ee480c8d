package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCampaignID is the standardized structured logging key for campaign identifiers.
	FieldCampaignID = "campaign_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for handoff correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType tags log records for downstream filtering (stage_start, handoff_commit, ...).
	FieldEventType = "event_type"
	// FieldSource names the extraction source that satisfied a datum.
	FieldSource = "source"
)

type contextKey string

const (
	ctxCampaignID    contextKey = "loom.campaign_id"
	ctxStage         contextKey = "loom.stage"
	ctxCorrelationID contextKey = "loom.correlation_id"
)

// WithCampaignID stamps a campaign identifier onto the context for logging.
func WithCampaignID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxCampaignID, id)
}

// WithStage stamps a stage name onto the context for logging.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxStage, stage)
}

// WithCorrelationID stamps a correlation identifier onto the context for logging.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxCorrelationID, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := ctx.Value(ctxCampaignID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldCampaignID, id))
	}
	if stage, ok := ctx.Value(ctxStage).(string); ok && stage != "" {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := ctx.Value(ctxCorrelationID).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	return fields
}

// WithContext returns a logger annotated with any context-carried fields.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
