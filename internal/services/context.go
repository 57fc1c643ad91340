package services

import "context"

type contextKey string

const (
	meetingIDKey contextKey = "meeting_id"
	stageKey     contextKey = "stage"
	runIDKey     contextKey = "run_id"
)

// WithMeetingID annotates context with the meeting identifier.
func WithMeetingID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, meetingIDKey, id)
}

// MeetingIDFromContext extracts the meeting identifier if present.
func MeetingIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(meetingIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a pipeline run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
