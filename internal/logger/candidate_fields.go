package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldMessageID is the structured log field key for the mail message identifier.
	FieldMessageID = "message_id"
	// FieldCandidate is the structured log field key for the candidate name.
	FieldCandidate = "candidate"
	// FieldEmail is the structured log field key for the candidate email address.
	FieldEmail = "candidate_email"

	// resumePreviewLimit bounds resume excerpts in log entries.
	resumePreviewLimit = 120
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
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields returns standard zap fields describing one applicant.
// Empty values are ignored to keep log entries compact when extraction failed.
func CandidateFields(messageID, name, email string) []zap.Field {
	return StringFields(
		StringField{Key: FieldMessageID, Value: messageID},
		StringField{Key: FieldCandidate, Value: name},
		StringField{Key: FieldEmail, Value: email},
	)
}

// ResumePreview returns a zap field with a bounded excerpt of resume text.
func ResumePreview(text string) zap.Field {
	return zap.String("resume_preview", Truncate(text, resumePreviewLimit))
}
