package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel},
		{"info", "json", zapcore.InfoLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"error", "console", zapcore.ErrorLevel},
		{"unknown", "json", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, tt.format)
			assert.True(t, l.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.expected-1))
			}
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	scoped := Component(log, "retriever").WithError(errors.New("boom"))
	scoped.Warn("vector search failed", map[string]interface{}{
		"limit": 3,
		"cause": errors.New("timeout"),
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "retriever", fields["component"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "timeout", fields["cause"])
	assert.EqualValues(t, 3, fields["limit"])
}

func TestComponent_NilLogger(t *testing.T) {
	l := Component(nil, "parser")
	assert.NotNil(t, l)
	l.Info("no-op", nil)
}
