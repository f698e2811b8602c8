package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log field keys shared by every AI-backed component.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// WithCommonFields attaches the provider and model fields to the logger,
// skipping empty values. A nil logger falls back to a no-op logger.
func WithCommonFields(log *zap.Logger, provider, model string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
