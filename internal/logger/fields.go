package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the model provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "ai_model"
	// FieldApplicantID identifies a stored applicant record.
	FieldApplicantID = "applicant_id"
	// FieldSource is the intake source label of a submission.
	FieldSource = "source"
	// FieldScoringPath tells which scoring path produced a result.
	FieldScoringPath = "scoring_path"
	// FieldRawPayload carries a rejected submission as received.
	FieldRawPayload = "raw_payload"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ModelFields describes the model provider and model identifier.
func ModelFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// ApplicantFields describes a submission without personal data.
func ApplicantFields(id, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldApplicantID, Value: id},
		StringField{Key: FieldSource, Value: source},
	)
}
