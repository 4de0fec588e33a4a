package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"garbage", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestZapAdapter_WithFields(t *testing.T) {
	logger := NewZapLogger(InfoLevel)

	child := logger.WithFields(String("source", "gmail"))
	assert.NotNil(t, child)

	// No fields returns the same logger
	same := logger.WithFields()
	assert.Equal(t, logger, same)
}

func TestGlobalLogger(t *testing.T) {
	logger := NewZapLogger(DebugLevel)
	SetGlobalLogger(logger)
	assert.Equal(t, logger, GetGlobalLogger())
}
