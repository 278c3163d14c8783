package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: DebugLevel, JSONOutput: true, Output: &buf})

	l.Debug("solved", "blocks", 3, "iterations", 2, "err", errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "solved", entry["message"])
	assert.Equal(t, float64(3), entry["blocks"])
	assert.Equal(t, float64(2), entry["iterations"])
	assert.Equal(t, "boom", entry["err"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: WarnLevel, JSONOutput: true, Output: &buf})

	l.Info("hidden")
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLoggerConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: InfoLevel, Output: &buf})

	l.Info("loaded", "lines", 4)
	out := buf.String()
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "lines=4")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	buf.Reset()
	l.SetJSONOutput(true)
	l.Info("loaded")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestLoggerOddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: InfoLevel, JSONOutput: true, Output: &buf})

	l.Info("reading", "calc.c", "lines", 7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reading calc.c", entry["message"])
	assert.Equal(t, float64(7), entry["lines"])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped")
	l.Info("dropped")
}
