package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name:   "json format with debug level",
			config: &Config{Level: "debug", Format: "json", Output: "stdout"},
		},
		{
			name:   "console format with info level",
			config: &Config{Level: "info", Format: "console", Output: "stderr", TimeFormat: time.RFC3339},
		},
		{
			name:   "unknown format falls back to json",
			config: &Config{Level: "warn", Format: "logfmt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, l)
			require.NotNil(t, l.Logger)
		})
	}
}

func TestJSONHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	l := &Logger{Logger: slog.New(handler)}

	l.Debug("should be dropped")
	l.Info("questionnaire submitted", slog.String("questionnaire_id", "q-1"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "questionnaire submitted", entry["msg"])
	assert.Equal(t, "q-1", entry["questionnaire_id"])
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := tint.NewHandler(&buf, &tint.Options{Level: slog.LevelWarn, NoColor: true})
	l := &Logger{Logger: slog.New(handler)}

	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), tt.input)
	}
}

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}

func TestWith(t *testing.T) {
	l := NewDefault()
	child := l.With("service", "risk-assessment")
	require.NotNil(t, child)
	assert.NotSame(t, l, child)
}
