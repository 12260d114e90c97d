package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and pipelines enrich the context once; every slog call made with that
// context then carries the request's business identifiers.
type LogFields struct {
	UserID    *int64  // Authenticated user
	Owner     *string // Repository owner
	Repo      *string // Repository name
	Tool      *string // Chat tool selected for the request
	Step      *string // Pipeline step (clone, discover, sample, report, ...)
	Component string  // Component name (OTel semantic convention style, e.g., "gitgrok.analysis.engine")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.UserID != nil {
		result.UserID = new.UserID
	}
	if new.Owner != nil {
		result.Owner = new.Owner
	}
	if new.Repo != nil {
		result.Repo = new.Repo
	}
	if new.Tool != nil {
		result.Tool = new.Tool
	}
	if new.Step != nil {
		result.Step = new.Step
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like prompts or LLM output.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
