package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldMember is the structured log field key for a chat member name.
	FieldMember = "member"
	// FieldGuild is the structured log field key for a chat guild identifier.
	FieldGuild = "guild_id"
	// FieldChannel is the structured log field key for a chat channel identifier.
	FieldChannel = "channel_id"
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

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithCommonFields attaches the AI provider and model fields to the logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// WithMember attaches member, guild and channel fields to the logger.
// Empty values are skipped.
func WithMember(logger *zap.Logger, member, guildID, channelID string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldMember, Value: member},
		StringField{Key: FieldGuild, Value: guildID},
		StringField{Key: FieldChannel, Value: channelID},
	)...)
}
