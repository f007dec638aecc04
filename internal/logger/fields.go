package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// KeyProvider is the structured log field key for the AI provider name.
	KeyProvider = "ai_provider"
	// KeyModel is the structured log field key for the AI model identifier.
	KeyModel = "ai_model"
	// KeyQuery is the structured log field key for a free-text movie preference.
	KeyQuery = "query"
	// KeyTitle is the structured log field key for a movie title.
	KeyTitle = "title"
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

func FieldQuery(query string) zap.Field { return zap.String(KeyQuery, strings.TrimSpace(query)) }

func FieldTitle(title string) zap.Field { return zap.String(KeyTitle, strings.TrimSpace(title)) }

func FieldModel(model string) zap.Field { return zap.String(KeyModel, strings.TrimSpace(model)) }

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields that describe the AI provider and model.
// Empty values are ignored.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: KeyProvider, Value: provider},
		StringField{Key: KeyModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}
